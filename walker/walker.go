// Package walker enumerates ordered k-tuples of (attribute, whitelisted
// row, new value) modifiers over a model's aggregate utility tables (spec
// §4.3, §4.4). A Walker mutates a shared *eval.Evaluator in place as it
// advances, so the caller evaluates the perturbed model directly after
// each NextValue/InitNextValue call without any extra copying.
package walker

import (
	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/internal/errs"
	"github.com/quesnel/efyj-go/reduce"
)

// Modifier is a single-cell utility-table edit: attribute, whitelisted row,
// and the candidate value it currently holds (spec §3 "Modifier").
type Modifier struct {
	Attribute int
	Row       int
	Value     int
}

// TotalLines returns attribute_line_tuple_limit(): the sum of whitelist
// lengths across every aggregate attribute, the largest budget a Walker
// can support (spec §4.3).
func TotalLines(whitelist reduce.Whitelists) int {
	total := 0
	for _, rows := range whitelist {
		total += len(rows)
	}
	return total
}

// Walker holds k (attribute, whitelist-row) "line" positions, strictly
// increasing in lexicographic order, plus one candidate value per position.
// It drives ev's utility-table cells directly as it advances.
type Walker struct {
	ev        *eval.Evaluator
	whitelist reduce.Whitelists
	offsets   []int // offsets[a] = cumulative whitelist length before attribute a
	total     int
	k         int

	lines  []int  // ascending line positions, lines[i] < lines[i+1]
	values []int  // current candidate value at each position
	valid  []bool // whether the position has any non-baseline candidate at all

	// primed marks that values/cells were just set by InitNextValue and have
	// not yet been reported through NextValue — the do-while adjustment
	// (spec §4.7 "repeat: evaluate; until next_value()==false") that makes
	// the init state itself the first candidate NextValue surfaces, instead
	// of being skipped by an advance-before-report loop.
	primed bool

	exhausted bool
}

// New builds a Walker for budget k over whitelist, driving cell mutations
// through ev. Returns an error if k is not positive; a Walker whose budget
// exceeds TotalLines(whitelist) is constructed already Exhausted, since no
// k-tuple of distinct lines exists.
func New(ev *eval.Evaluator, whitelist reduce.Whitelists, k int) (*Walker, error) {
	const op = "walker.New"
	if k < 1 {
		return nil, errs.New(errs.KindEvaluatorInvariantViolation, op, "budget must be >= 1")
	}

	offsets := make([]int, len(whitelist)+1)
	for a, rows := range whitelist {
		offsets[a+1] = offsets[a] + len(rows)
	}
	total := offsets[len(whitelist)]

	w := &Walker{
		ev:        ev,
		whitelist: whitelist,
		offsets:   offsets,
		total:     total,
		k:         k,
		lines:     make([]int, k),
		values:    make([]int, k),
		valid:     make([]bool, k),
	}
	if k > total {
		w.exhausted = true
		return w, nil
	}
	for i := 0; i < k; i++ {
		w.lines[i] = i
	}
	return w, nil
}

// Exhausted reports whether every line-tuple of this budget has been visited.
func (w *Walker) Exhausted() bool { return w.exhausted }

// posFromLine maps a single line index back to (attribute, whitelisted row).
func (w *Walker) posFromLine(line int) (attr, row int) {
	for a := 0; a < len(w.whitelist); a++ {
		if line < w.offsets[a+1] {
			return a, w.whitelist[a][line-w.offsets[a]]
		}
	}
	return 0, 0
}

// firstValidValue returns the smallest scale value other than baseline, or
// false if the scale has no such alternative (scaleSize <= 1).
func firstValidValue(scaleSize, baseline int) (int, bool) {
	if scaleSize <= 1 {
		return 0, false
	}
	if baseline != 0 {
		return 0, true
	}
	return 1, true
}

// nextValidValue returns the next scale value after current, skipping
// baseline, or false once the scale is exhausted.
func nextValidValue(scaleSize, baseline, current int) (int, bool) {
	v := current + 1
	if v == baseline {
		v++
	}
	if v >= scaleSize {
		return 0, false
	}
	return v, true
}

// restoreCells resets every currently active cell back to its baseline
// value, so line changes never leave perturbations on cells no longer
// tracked by the walker.
func (w *Walker) restoreCells() {
	for i := 0; i < w.k; i++ {
		a, r := w.posFromLine(w.lines[i])
		w.ev.RestoreValue(a, r)
	}
}

// InitNextValue clears every currently tracked cell to its first candidate
// value (spec §4.3 "each referenced cell is cleared to 0" — adjusted to
// skip the baseline value per §4.4). Call once per line-tuple, before the
// first NextValue. The state InitNextValue sets up is itself a candidate
// (the do-while adjustment noted on the primed field) and is surfaced by
// the first following NextValue call rather than skipped.
func (w *Walker) InitNextValue() {
	if w.exhausted {
		return
	}
	allValid := true
	for i := 0; i < w.k; i++ {
		a, r := w.posFromLine(w.lines[i])
		base := w.ev.BaselineAt(a, r)
		sz := w.ev.ScaleSize(a)
		v, ok := firstValidValue(sz, base)
		w.valid[i] = ok
		if ok {
			w.values[i] = v
			w.ev.SetValue(a, r, v)
		} else {
			w.ev.ClearValue(a, r)
			allValid = false
		}
	}
	w.primed = allValid
}

// NextValue reports the current line-tuple's value combination, then
// advances it by one step, odometer-style: the last position changes
// fastest, carrying left on overflow. The first call after InitNextValue
// reports the init state itself without advancing (spec §4.7's do-while
// loop: "repeat: evaluate; until next_value()==false"). Returns false once
// every combination for the current line-tuple has been visited (including
// immediately, if any position has no non-baseline candidate at all).
func (w *Walker) NextValue() bool {
	if w.exhausted {
		return false
	}
	for i := 0; i < w.k; i++ {
		if !w.valid[i] {
			return false
		}
	}
	if w.primed {
		w.primed = false
		return true
	}

	for i := w.k - 1; i >= 0; i-- {
		a, r := w.posFromLine(w.lines[i])
		sz := w.ev.ScaleSize(a)
		base := w.ev.BaselineAt(a, r)
		if nv, ok := nextValidValue(sz, base, w.values[i]); ok {
			w.values[i] = nv
			w.ev.SetValue(a, r, nv)
			return true
		}
		fv, ok := firstValidValue(sz, base)
		if ok {
			w.values[i] = fv
			w.ev.SetValue(a, r, fv)
		} else {
			w.ev.ClearValue(a, r)
		}
	}
	return false
}

// NextLine advances the walker's line-tuple to the next combination of k
// distinct, strictly increasing lines in lexicographic order (spec §4.3).
// Returns false once the line space is exhausted. Restores every cell the
// previous line-tuple touched before selecting the new one.
func (w *Walker) NextLine() bool {
	if w.exhausted {
		return false
	}
	w.restoreCells()

	i := w.k - 1
	for i >= 0 && w.lines[i] == w.total-w.k+i {
		i--
	}
	if i < 0 {
		w.exhausted = true
		return false
	}
	w.lines[i]++
	for j := i + 1; j < w.k; j++ {
		w.lines[j] = w.lines[i] + (j - i)
	}
	return true
}

// Snapshot returns the current modifier set, already in the canonical
// strictly-increasing (attribute, row) order spec §3 requires of a
// Modifier set.
func (w *Walker) Snapshot() []Modifier {
	mods := make([]Modifier, w.k)
	for i := 0; i < w.k; i++ {
		a, r := w.posFromLine(w.lines[i])
		mods[i] = Modifier{Attribute: a, Row: r, Value: w.values[i]}
	}
	return mods
}
