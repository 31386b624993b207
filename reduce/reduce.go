// Package reduce implements the whitelist reducer (spec §4.2): it runs the
// compiled program symbolically over the observed options matrix and
// records, per aggregate attribute, which utility-table rows are ever
// reachable — shrinking the modifier search space without touching
// evaluation semantics.
package reduce

import (
	"sort"

	"github.com/quesnel/efyj-go/eval"
)

// symbol is one entry of the symbolic evaluation stack: either a known
// concrete value (a basic attribute's observed column, or a constant) or an
// "unknown" marker carrying the scale size to enumerate over, standing in
// for an aggregate child whose eventual value has not been chosen yet
// (spec §4.2 "don't know marker *").
type symbol struct {
	known     bool
	value     int
	scaleSize int
}

// Whitelists holds one ordered row-index vector per aggregate attribute,
// in Program.Aggregates order.
type Whitelists [][]int

// Reduce runs the reducer once over every row of an options matrix (spec
// §4.2: "runs once per (model, options) pair"). rows must be column-aligned
// to prog.BasicCount, in the evaluator's basic-attribute order.
func Reduce(prog *eval.Program, rows [][]int) Whitelists {
	sets := make([]map[int]struct{}, len(prog.Aggregates))
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}

	for _, row := range rows {
		reduceRow(prog, row, sets)
	}

	return finalize(sets)
}

// reduceRow symbolically evaluates one observed row, populating sets as it
// goes. Basic inputs push known values; every aggregate's result is pushed
// back as unknown, since the reducer never decides what an aggregate's cell
// actually evaluates to — only which rows of its table are reachable.
func reduceRow(prog *eval.Program, row []int, sets []map[int]struct{}) {
	stack := make([]symbol, 0, len(prog.Blocks))

	aggIdx := 0
	for _, b := range prog.Blocks {
		switch b.Kind {
		case eval.BlockInput:
			stack = append(stack, symbol{known: true, value: row[b.InputIndex]})
		case eval.BlockAggregate:
			agg := b.Aggregate
			n := len(agg.Coeffs)
			popped := stack[len(stack)-n:]
			stack = stack[:len(stack)-n]

			addReachableRows(agg.Coeffs, popped, sets[aggIdx])

			stack = append(stack, symbol{known: false, scaleSize: agg.ScaleSize})
			aggIdx++
		}
	}
}

// addReachableRows enumerates every row index a popped vector can produce:
// known positions contribute a fixed term, unknown positions range over
// their full scale (spec §4.2 "enumerate the * positions over the full
// cartesian product of the * children's scales").
func addReachableRows(coeffs []int, popped []symbol, set map[int]struct{}) {
	base := 0
	var unknownPos []int
	for i, p := range popped {
		if p.known {
			base += coeffs[i] * p.value
		} else {
			unknownPos = append(unknownPos, i)
		}
	}

	var rec func(pos int, acc int)
	rec = func(pos int, acc int) {
		if pos == len(unknownPos) {
			set[acc] = struct{}{}
			return
		}
		i := unknownPos[pos]
		for v := 0; v < popped[i].scaleSize; v++ {
			rec(pos+1, acc+coeffs[i]*v)
		}
	}
	rec(0, base)
}

// Full sets every aggregate's whitelist to its entire row range [0,
// row_count), matching for_each_model_solver::full — a mode reserved for
// testing the walker and search driver without the reducer in the loop
// (spec §4.2 "a full mode exists for testing").
func Full(prog *eval.Program) Whitelists {
	out := make(Whitelists, len(prog.Aggregates))
	for i, agg := range prog.Aggregates {
		rows := make([]int, agg.RowCount)
		for r := range rows {
			rows[r] = r
		}
		out[i] = rows
	}
	return out
}

func finalize(sets []map[int]struct{}) Whitelists {
	out := make(Whitelists, len(sets))
	for i, set := range sets {
		rows := make([]int, 0, len(set))
		for r := range set {
			rows = append(rows, r)
		}
		sort.Ints(rows)
		out[i] = rows
	}
	return out
}

// UnusedScaleValues reports, per aggregate attribute, which of its own
// scale values are never produced by any whitelisted row's baseline cell —
// a supplemented diagnostic grounded on the original solver's
// detect_missing_scale_value, exposed here as a read-only check rather than
// on the evaluation hot path.
func UnusedScaleValues(prog *eval.Program, whitelists Whitelists) [][]int {
	out := make([][]int, len(prog.Aggregates))
	for i, agg := range prog.Aggregates {
		produced := make([]bool, agg.ScaleSize)
		for _, r := range whitelists[i] {
			produced[agg.Baseline[r]] = true
		}
		var missing []int
		for v, ok := range produced {
			if !ok {
				missing = append(missing, v)
			}
		}
		out[i] = missing
	}
	return out
}
