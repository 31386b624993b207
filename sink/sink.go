// Package sink implements the two result-consumption modes the search
// driver feeds into: a streaming callback and model writeback (spec §4.9).
package sink

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/walker"
)

// Result is one budget's outcome: the best modifier set found, its kappa,
// and the bookkeeping counters the aggregator accumulated (spec §3 "Result").
type Result struct {
	Budget               int
	Kappa                float64
	Modifiers            []walker.Modifier
	Elapsed              time.Duration
	KappaEvaluations     int
	EvaluatorInvocations int
}

// OnResult is invoked once per completed budget. Returning false requests
// cancellation of the remaining search (spec §4.9, §6.3).
type OnResult func(Result) bool

// OnInterrupt is polled periodically by the driver; it must be cheap and
// returns true to request cancellation (spec §6.3 on_interrupt).
type OnInterrupt func() bool

// ApplyModifiers returns a copy of m with every modifier's utility-table
// cell overwritten, ready for serialisation — the "materialise a modified
// copy of the model" step of §4.9's writeback mode. The Attributes,
// Description, Options and Groups slices are copied and m is left
// unchanged, but each attribute's Children, Scale.Values and
// EmbeddedOptionValues slices are shared with m. The Attribute index in each
// Modifier is the Program-compile-order index (as produced by walker),
// mapped back to the model's own attribute index via prog.
func ApplyModifiers(m *model.Model, prog *eval.Program, mods []walker.Modifier) *model.Model {
	out := &model.Model{
		Name:        m.Name,
		Version:     m.Version,
		Created:     m.Created,
		Description: append([]string(nil), m.Description...),
		Reports:     m.Reports,
		OptDataType: m.OptDataType,
		OptLevels:   m.OptLevels,
		Options:     append([]string(nil), m.Options...),
		Groups:      append([]string(nil), m.Groups...),
		Attributes:  make([]model.Attribute, len(m.Attributes)),
	}
	copy(out.Attributes, m.Attributes)

	rowsByAttr := make(map[int][]int)
	for _, mod := range mods {
		attrIdx := prog.Aggregates[mod.Attribute].AttrIndex
		if rowsByAttr[attrIdx] == nil {
			rowsByAttr[attrIdx] = append([]int(nil), m.Attributes[attrIdx].Function.Rows()...)
		}
		rowsByAttr[attrIdx][mod.Row] = mod.Value
	}
	for attrIdx, rows := range rowsByAttr {
		a := out.Attributes[attrIdx]
		a.Function.Low = model.EncodeRows(rows)
		out.Attributes[attrIdx] = a
	}
	return out
}

// Writeback materialises one file per Result into dir, named by budget
// number, using writeFile to perform the actual serialisation (typically
// xmlmodel.Write) — kept pluggable so this package does not depend on the
// XML codec.
func Writeback(dir string, results []Result, prog *eval.Program, m *model.Model, writeFile func(path string, m *model.Model) error) error {
	for _, r := range results {
		perturbed := ApplyModifiers(m, prog, r.Modifiers)
		path := filepath.Join(dir, fmt.Sprintf("%d.dxi", r.Budget))
		if err := writeFile(path, perturbed); err != nil {
			return err
		}
	}
	return nil
}
