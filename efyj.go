// Package efyj is the library facade (spec §6.3): the six operations a
// caller — the CLI or an embedding program — drives the rest of the module
// through, each taking file paths and returning plain Go errors instead of
// the source library's status-and-data pairs.
package efyj

import (
	"github.com/quesnel/efyj-go/csvoptions"
	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/internal/errs"
	"github.com/quesnel/efyj-go/internal/obslog"
	"github.com/quesnel/efyj-go/kappa"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/options"
	"github.com/quesnel/efyj-go/search"
	"github.com/quesnel/efyj-go/sink"
	"github.com/quesnel/efyj-go/xmlmodel"
)

// Result is one budget's search outcome, re-exported so callers never need
// to import the search/sink packages directly.
type Result = sink.Result

// OnResult is invoked once per completed budget; returning false cancels
// the remainder of the search (spec §6.3).
type OnResult = sink.OnResult

// OnInterrupt is polled periodically by the driver; it must be cheap and
// returns true to request cancellation (spec §6.3).
type OnInterrupt = sink.OnInterrupt

// Config carries the three caller-facing search knobs (spec §6.3
// "Configuration options") plus the prediction place switch HasPlace.
type Config = search.Config

// Information returns the basic-attribute names and scale sizes a model
// declares, column-aligned the way every options matrix must be (spec
// §6.3 "information(model_path)").
func Information(modelPath string) (names []string, sizes []int, err error) {
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return nil, nil, err
	}
	return m.BasicAttributeNames(), m.BasicAttributeScaleSizes(), nil
}

// ExtractOptions returns the dense options matrix for modelPath, read from
// optionsPath when non-empty, or from the model's own embedded <OPTION>
// entries otherwise (spec §6.3 "extract_options").
func ExtractOptions(modelPath, optionsPath string) (*options.Matrix, error) {
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return nil, err
	}
	if optionsPath != "" {
		return csvoptions.Read(optionsPath, m)
	}
	return extractEmbedded(m)
}

// extractEmbedded builds a Matrix from a model's own embedded per-option
// scale values (spec §6.1 "optional option values"): one row per entry of
// m.Options, columns taken from each basic attribute's
// EmbeddedOptionValues at that row's position.
//
// The model file carries no department/year/place metadata for embedded
// options, so each row is assigned a distinct synthetic
// (Department, Year, Place) triple — every pair of rows is then "related"
// regardless of which subdataset predicate the caller selects. This only
// matters for prediction runs against embedded options, an unusual
// combination; CSV-sourced options carry real metadata.
func extractEmbedded(m *model.Model) (*options.Matrix, error) {
	const op = "efyj.ExtractOptions"
	basicIdx := m.BasicAttributeIndices()
	n := len(m.Options)

	rows := make([]options.Option, n)
	for opt := 0; opt < n; opt++ {
		values := make([]int, len(basicIdx))
		for col, attrIdx := range basicIdx {
			embedded := m.Attributes[attrIdx].EmbeddedOptionValues
			if opt >= len(embedded) {
				return nil, errs.New(errs.KindOptionsInconsistent, op,
					"model option count disagrees with an embedded attribute's value count")
			}
			values[col] = embedded[opt]
		}
		root := m.Root().EmbeddedOptionValues
		if opt >= len(root) {
			return nil, errs.New(errs.KindOptionsInconsistent, op,
				"model option count disagrees with the root attribute's embedded value count")
		}
		rows[opt] = options.Option{
			Identifier: m.Options[opt],
			Place:      opt,
			Department: opt,
			Year:       opt,
			Observed:   root[opt],
			Values:     values,
		}
	}
	return &options.Matrix{BasicNames: m.BasicAttributeNames(), HasPlace: true, Rows: rows}, nil
}

// EvaluateResult is the per-row simulated/observed pair plus both weighted-
// kappa variants (spec §6.3 "evaluate(model_path, Data)").
type EvaluateResult struct {
	Simulated    []int
	Observed     []int
	LinearKappa  float64
	SquaredKappa float64
}

// Evaluate runs data's rows through modelPath's compiled program and scores
// the result against both kappa variants.
func Evaluate(modelPath string, data *options.Matrix) (*EvaluateResult, error) {
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return nil, err
	}
	prog, err := eval.Compile(m)
	if err != nil {
		return nil, err
	}
	rootSize := prog.Aggregates[len(prog.Aggregates)-1].ScaleSize
	if err := data.Validate(rootSize); err != nil {
		return nil, err
	}

	ev := eval.NewEvaluator(prog)
	simulated := make([]int, data.Len())
	for i, row := range data.Rows {
		v, err := ev.Evaluate(row.Values)
		if err != nil {
			return nil, err
		}
		simulated[i] = v
	}
	observed := data.ObservedColumn()

	linear, err := kappa.New(rootSize, kappa.Linear).Compute(observed, simulated)
	if err != nil {
		return nil, err
	}
	squared, err := kappa.New(rootSize, kappa.Squared).Compute(observed, simulated)
	if err != nil {
		return nil, err
	}
	return &EvaluateResult{Simulated: simulated, Observed: observed, LinearKappa: linear, SquaredKappa: squared}, nil
}

// Adjustment runs the training-and-testing-on-the-same-matrix search (spec
// §4.7, §6.3) and streams one Result per budget to onResult.
func Adjustment(modelPath string, data *options.Matrix, onResult OnResult, onInterrupt OnInterrupt, reduce bool, limit, threads int, logger *obslog.Logger) error {
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return err
	}
	d, err := search.NewDriver(m, data, Config{Reduce: reduce, Limit: limit, Threads: threads}, logger)
	if err != nil {
		return err
	}
	return d.Adjustment(onResult, onInterrupt)
}

// Prediction runs the leave-related-rows-out cross-validation search (spec
// §4.7, §6.3) and streams one Result per budget to onResult.
func Prediction(modelPath string, data *options.Matrix, onResult OnResult, onInterrupt OnInterrupt, reduce bool, limit, threads int, hasPlace bool, logger *obslog.Logger) error {
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return err
	}
	d, err := search.NewDriver(m, data, Config{Reduce: reduce, Limit: limit, Threads: threads, HasPlace: hasPlace}, logger)
	if err != nil {
		return err
	}
	return d.Prediction(onResult, onInterrupt)
}

// MergeOptions writes a copy of modelPath's model to outPath whose
// <OPTION> entries embed data (spec §6.3 "merge_options"): the inverse of
// extracting options from a model's own embedded values.
func MergeOptions(modelPath, outPath string, data *options.Matrix) error {
	const op = "efyj.MergeOptions"
	m, err := xmlmodel.Read(modelPath)
	if err != nil {
		return err
	}

	basicIdx := m.BasicAttributeIndices()
	if len(data.BasicNames) != len(basicIdx) {
		return errs.New(errs.KindOptionsInconsistent, op, "options matrix column count disagrees with model basic attribute count")
	}

	out := &model.Model{
		Name: m.Name, Version: m.Version, Created: m.Created,
		Description: append([]string(nil), m.Description...),
		Reports:     m.Reports, OptDataType: m.OptDataType, OptLevels: m.OptLevels,
		Groups:     append([]string(nil), m.Groups...),
		Attributes: make([]model.Attribute, len(m.Attributes)),
	}
	copy(out.Attributes, m.Attributes)

	ids := make([]string, data.Len())
	for i, r := range data.Rows {
		ids[i] = r.Identifier
	}
	out.Options = ids

	for col, attrIdx := range basicIdx {
		values := make([]int, data.Len())
		for i, r := range data.Rows {
			values[i] = r.Values[col]
		}
		a := out.Attributes[attrIdx]
		a.EmbeddedOptionValues = values
		out.Attributes[attrIdx] = a
	}
	rootValues := make([]int, data.Len())
	for i, r := range data.Rows {
		rootValues[i] = r.Observed
	}
	root := out.Attributes[0]
	root.EmbeddedOptionValues = rootValues
	out.Attributes[0] = root

	return xmlmodel.Write(outPath, out)
}
