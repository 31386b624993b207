// Package search implements the kappa-driven search driver (spec §4.7):
// the adjustment loop (train and test on the same options matrix) and the
// prediction loop (leave-related-rows-out cross validation), both built on
// top of the walker, the parallel coordinator, and the kappa calculator.
package search

import (
	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/internal/obslog"
	"github.com/quesnel/efyj-go/kappa"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/options"
	"github.com/quesnel/efyj-go/parallel"
	"github.com/quesnel/efyj-go/reduce"
	"github.com/quesnel/efyj-go/sink"
	"github.com/quesnel/efyj-go/walker"
)

// Config holds the three caller-facing knobs spec §6.3 enumerates, plus the
// prediction subdataset predicate's place switch.
type Config struct {
	// Reduce selects whitelist reduction (§4.2) before searching; false
	// uses the full row range, primarily for testing (§4.7 "Reduce mode").
	Reduce bool
	// Limit caps the budget range; <= 0 means use attribute_line_tuple_limit().
	Limit int
	// Threads is the parallel coordinator's worker count; 1 is single-threaded.
	Threads int
	// HasPlace selects the subdataset predicate's place constraint for
	// prediction runs (spec §9 open question).
	HasPlace bool
}

// Driver owns the compiled program, the options matrix, and the whitelist
// for one search run; it is built once per (model, options, config) triple.
type Driver struct {
	model     *model.Model
	prog      *eval.Program
	data      *options.Matrix
	whitelist reduce.Whitelists
	cfg       Config
	logger    *obslog.Logger
	rows      [][]int
}

// NewDriver compiles m, builds (or fully opens) the whitelist, and prepares
// the row-major options view the evaluator consumes.
func NewDriver(m *model.Model, data *options.Matrix, cfg Config, logger *obslog.Logger) (*Driver, error) {
	prog, err := eval.Compile(m)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(prog.Aggregates[len(prog.Aggregates)-1].ScaleSize); err != nil {
		return nil, err
	}

	rows := make([][]int, data.Len())
	for i, r := range data.Rows {
		rows[i] = r.Values
	}

	var whitelist reduce.Whitelists
	if cfg.Reduce {
		whitelist = reduce.Reduce(prog, rows)
	} else {
		whitelist = reduce.Full(prog)
	}

	return &Driver{model: m, prog: prog, data: data, whitelist: whitelist, cfg: cfg, logger: logger, rows: rows}, nil
}

// Whitelist exposes the reducer's output, e.g. for the UnusedScaleValues
// diagnostic or for a caller that wants to inspect the reduced search space.
func (d *Driver) Whitelist() reduce.Whitelists { return d.whitelist }

// Program exposes the compiled program, needed by sink.ApplyModifiers for
// writeback.
func (d *Driver) Program() *eval.Program { return d.prog }

// RootScaleSize returns the root attribute's scale size — the confusion
// matrix dimension (spec §3 "Root attribute scale size equals the
// confusion-matrix dimension").
func (d *Driver) RootScaleSize() int {
	return d.prog.Aggregates[len(d.prog.Aggregates)-1].ScaleSize
}

// MaxBudget returns the largest budget k this driver will search,
// capping attribute_line_tuple_limit() at the configured Limit when positive.
func (d *Driver) MaxBudget() int {
	max := walker.TotalLines(d.whitelist)
	if d.cfg.Limit > 0 && d.cfg.Limit < max {
		return d.cfg.Limit
	}
	return max
}

// Adjustment runs the per-budget best-modifier search described in spec
// §4.7, training and testing against the whole options matrix.
func (d *Driver) Adjustment(onResult sink.OnResult, onInterrupt sink.OnInterrupt) error {
	cancel := &parallel.CancelFlag{}
	observed := d.data.ObservedColumn()
	rootSize := d.RootScaleSize()

	template := eval.NewEvaluator(d.prog)

	simulated := make([]int, len(d.rows))
	for i, row := range d.rows {
		v, err := template.Evaluate(row)
		if err != nil {
			return err
		}
		simulated[i] = v
	}
	baseline := kappa.New(rootSize, kappa.Squared)
	k0, err := baseline.Compute(observed, simulated)
	if err != nil {
		return err
	}
	if !onResult(sink.Result{Budget: 0, Kappa: k0, KappaEvaluations: 1, EvaluatorInvocations: len(d.rows)}) {
		return nil
	}

	rows := d.rows
	for k := 1; k <= d.MaxBudget(); k++ {
		if onInterrupt != nil && onInterrupt() {
			cancel.Set()
		}
		if cancel.IsSet() {
			break
		}

		template.Reset()
		newEvalFn := func() parallel.EvalFunc {
			calc := kappa.New(rootSize, kappa.Squared)
			sim := make([]int, len(rows))
			return func(ev *eval.Evaluator) (float64, int) {
				for i, row := range rows {
					v, err := ev.Evaluate(row)
					if err != nil {
						continue
					}
					sim[i] = v
				}
				kappaValue, _ := calc.Compute(observed, sim)
				return kappaValue, len(rows)
			}
		}

		result := parallel.RunBudget(k, d.cfg.Threads, template, d.whitelist, newEvalFn, cancel, d.logger)
		if !onResult(result) {
			cancel.Set()
			break
		}
	}
	return nil
}

// Prediction runs the leave-related-rows-out cross-validation loop (spec
// §4.7): for each alternative, the best modifier set is the one maximising
// kappa over that alternative's subdataset alone, cached by reduction key
// so alternatives sharing a subdataset never search twice.
func (d *Driver) Prediction(onResult sink.OnResult, onInterrupt sink.OnInterrupt) error {
	cancel := &parallel.CancelFlag{}
	observed := d.data.ObservedColumn()
	rootSize := d.RootScaleSize()
	rows := d.rows

	sub, err := options.BuildSubdatasets(d.data, d.cfg.HasPlace)
	if err != nil {
		return err
	}
	subObserved := make([][]int, len(rows))
	for i, members := range sub.Members {
		obs := make([]int, len(members))
		for j, m := range members {
			obs[j] = observed[m]
		}
		subObserved[i] = obs
	}

	template := eval.NewEvaluator(d.prog)
	globalCalc := kappa.New(rootSize, kappa.Squared)

	predictions := make([]int, len(rows))
	for i, row := range rows {
		v, err := template.Evaluate(row)
		if err != nil {
			return err
		}
		predictions[i] = v
	}
	k0, err := globalCalc.Compute(observed, predictions)
	if err != nil {
		return err
	}
	if !onResult(sink.Result{Budget: 0, Kappa: k0, KappaEvaluations: 1, EvaluatorInvocations: len(rows)}) {
		return nil
	}

	for k := 1; k <= d.MaxBudget(); k++ {
		if onInterrupt != nil && onInterrupt() {
			cancel.Set()
		}
		if cancel.IsSet() {
			break
		}

		cache := make(map[int][]walker.Modifier)
		predictions := make([]int, len(rows))
		totalLoops, totalEvals := 0, 0

		for opt, members := range sub.Members {
			if cancel.IsSet() {
				break
			}
			key := sub.ReductionKey[opt]
			mods, cached := cache[key]
			if !cached {
				template.Reset()
				obs := subObserved[opt]
				newEvalFn := func() parallel.EvalFunc {
					calc := kappa.New(rootSize, kappa.Squared)
					sim := make([]int, len(members))
					return func(ev *eval.Evaluator) (float64, int) {
						for i, j := range members {
							v, err := ev.Evaluate(rows[j])
							if err != nil {
								continue
							}
							sim[i] = v
						}
						kappaValue, _ := calc.Compute(obs, sim)
						return kappaValue, len(members)
					}
				}
				result := parallel.RunBudget(k, d.cfg.Threads, template, d.whitelist, newEvalFn, cancel, d.logger)
				mods = result.Modifiers
				cache[key] = mods
				totalLoops += result.KappaEvaluations
				totalEvals += result.EvaluatorInvocations
			}

			template.Reset()
			for _, m := range mods {
				template.SetValue(m.Attribute, m.Row, m.Value)
			}
			v, err := template.Evaluate(rows[opt])
			if err != nil {
				return err
			}
			predictions[opt] = v
			totalEvals++
		}
		template.Reset()

		globalKappa, err := globalCalc.Compute(observed, predictions)
		if err != nil {
			return err
		}
		result := sink.Result{Budget: k, Kappa: globalKappa, KappaEvaluations: totalLoops, EvaluatorInvocations: totalEvals}
		if !onResult(result) {
			cancel.Set()
			break
		}
	}
	return nil
}
