package eval

import (
	"github.com/quesnel/efyj-go/internal/errs"
)

// Evaluator runs a compiled Program against option rows. It owns a mutable
// copy of every aggregate's utility table — independent of Program, which
// is read-only and safely shared across Evaluators — so that the walker and
// the search driver can perturb cells without disturbing other workers'
// copies (spec §5 "each worker holds its own evaluator").
type Evaluator struct {
	prog   *Program
	tables [][]int // tables[aggIdx][row], aggIdx indexes prog.Aggregates
	stack  []int   // reusable scratch, grown once to the deepest need
}

// NewEvaluator builds an Evaluator over prog, copying every aggregate's
// baseline utility table so prog itself is never mutated.
func NewEvaluator(prog *Program) *Evaluator {
	tables := make([][]int, len(prog.Aggregates))
	for i, agg := range prog.Aggregates {
		tables[i] = append([]int(nil), agg.Baseline...)
	}
	return &Evaluator{prog: prog, tables: tables, stack: make([]int, 0, len(prog.Blocks))}
}

// Clone returns a new Evaluator over the same Program with its own
// independent copy of the mutable tables — the per-worker fan-out point for
// the parallel coordinator (spec §8).
func (e *Evaluator) Clone() *Evaluator {
	tables := make([][]int, len(e.tables))
	for i, t := range e.tables {
		tables[i] = append([]int(nil), t...)
	}
	return &Evaluator{prog: e.prog, tables: tables, stack: make([]int, 0, cap(e.stack))}
}

// Program returns the compiled program this evaluator runs.
func (e *Evaluator) Program() *Program { return e.prog }

// Evaluate computes the root attribute's scale value for one options row,
// walking the reverse-Polish program with a single reusable stack.
//
// Each BlockAggregate instruction pops exactly len(Coeffs) values off the
// stack. Because children were compiled onto the stack in their declared
// order (first child deepest), the popped window is already in that same
// order — popped[i] is child i's value — so the row index is a direct dot
// product against Coeffs, with no reversal needed.
func (e *Evaluator) Evaluate(row []int) (int, error) {
	const op = "eval.Evaluate"
	if len(row) != e.prog.BasicCount {
		return 0, errs.New(errs.KindEvaluatorInvariantViolation, op, "row width does not match program's basic attribute count")
	}

	stack := e.stack[:0]
	for _, b := range e.prog.Blocks {
		switch b.Kind {
		case BlockInput:
			stack = append(stack, row[b.InputIndex])
		case BlockAggregate:
			agg := b.Aggregate
			n := len(agg.Coeffs)
			if len(stack) < n {
				return 0, errs.New(errs.KindEvaluatorInvariantViolation, op, "stack underflow")
			}
			popped := stack[len(stack)-n:]
			rowIdx := 0
			for i, v := range popped {
				rowIdx += agg.Coeffs[i] * v
			}
			stack = stack[:len(stack)-n]

			table := e.tables[agg.Index]
			if rowIdx < 0 || rowIdx >= len(table) {
				return 0, errs.New(errs.KindEvaluatorInvariantViolation, op, "utility table row index out of range")
			}
			stack = append(stack, table[rowIdx])
		}
	}
	e.stack = stack[:0]

	if len(stack) != 1 {
		return 0, errs.New(errs.KindEvaluatorInvariantViolation, op, "program left more than one value on the stack")
	}
	return stack[0], nil
}

// ValueAt returns the current (possibly perturbed) utility-table cell for
// aggregate aggIdx, row.
func (e *Evaluator) ValueAt(aggIdx, row int) int { return e.tables[aggIdx][row] }

// BaselineAt returns the original, unperturbed utility-table cell.
func (e *Evaluator) BaselineAt(aggIdx, row int) int { return e.prog.Aggregates[aggIdx].Baseline[row] }

// SetValue perturbs one utility-table cell — the core modifier operation
// the walker applies (spec §5 "set a whitelisted row to a candidate value").
func (e *Evaluator) SetValue(aggIdx, row, value int) { e.tables[aggIdx][row] = value }

// RestoreValue resets one cell back to its baseline value.
func (e *Evaluator) RestoreValue(aggIdx, row int) {
	e.tables[aggIdx][row] = e.prog.Aggregates[aggIdx].Baseline[row]
}

// ClearValue sets one cell to scale value 0. The walker uses it for a cell
// whose scale offers no value other than its baseline.
func (e *Evaluator) ClearValue(aggIdx, row int) { e.tables[aggIdx][row] = 0 }

// IncreaseValue advances one cell to the next scale value. It does not check
// the scale bound; the walker sets candidate values with SetValue instead.
func (e *Evaluator) IncreaseValue(aggIdx, row int) { e.tables[aggIdx][row]++ }

// Reset restores every utility table to its baseline, used between search
// budgets (spec §5 "restore baseline before trying the next tuple size").
func (e *Evaluator) Reset() {
	for i, agg := range e.prog.Aggregates {
		copy(e.tables[i], agg.Baseline)
	}
}

// AggregateCount returns the number of aggregate attributes in the program.
func (e *Evaluator) AggregateCount() int { return len(e.prog.Aggregates) }

// RowCount returns the utility-table row count for aggregate aggIdx.
func (e *Evaluator) RowCount(aggIdx int) int { return e.prog.Aggregates[aggIdx].RowCount }

// ScaleSize returns the codomain scale size for aggregate aggIdx.
func (e *Evaluator) ScaleSize(aggIdx int) int { return e.prog.Aggregates[aggIdx].ScaleSize }
