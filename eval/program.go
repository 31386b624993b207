// Package eval compiles a DEX model into a reverse-Polish program and
// evaluates it against basic-attribute value vectors, per spec §4.1.
//
// Compile walks the model once, in the same child-before-parent order the
// original C++ solver's recursive_fill used, and produces a flat slice of
// Blocks plus one AggregateDescriptor per aggregate attribute with
// precomputed mixed-radix coefficients. Evaluator then owns a mutable copy
// of the utility tables and a reusable scratch stack — the hot loop never
// allocates.
package eval

import (
	"github.com/quesnel/efyj-go/internal/errs"
	"github.com/quesnel/efyj-go/model"
)

// BlockKind distinguishes a program block that reads an input column from
// one that looks up an aggregate's utility table — a tagged union kept as
// an explicit enum+pointer rather than an interface, since the evaluator's
// hot loop must never allocate or hit a dynamic dispatch per block.
type BlockKind int

const (
	// BlockInput reads one basic attribute's value from the options row.
	BlockInput BlockKind = iota
	// BlockAggregate looks up one aggregate attribute's utility table.
	BlockAggregate
)

// AggregateDescriptor precomputes everything Evaluate needs for one
// aggregate attribute: its children's scale sizes, the mixed-radix
// coefficients over them, and the utility table's baseline contents.
type AggregateDescriptor struct {
	// Index is this descriptor's 0-based position in Program.Aggregates —
	// and the matching index into an Evaluator's tables slice — precomputed
	// at compile time so the hot evaluation loop never has to search for it
	// (spec §4.1 "never allocates in steady state", §9 "never recompute in
	// the hot loop").
	Index int
	// AttrIndex is the attribute's index into the source Model, kept for
	// diagnostics and for walker/whitelist bookkeeping.
	AttrIndex int
	// ChildScaleSizes holds each child's scale size, in declared order.
	ChildScaleSizes []int
	// Coeffs[i] is the multiplier for the i-th child's value when
	// computing a utility-table row index; Coeffs[last]==1, and each
	// earlier coefficient is the running product of later scale sizes
	// (spec §4.1 "last child coefficient = 1").
	Coeffs []int
	// ScaleSize is this attribute's own scale size (the table's codomain).
	ScaleSize int
	// RowCount is the product of ChildScaleSizes — the table's length.
	RowCount int
	// Baseline holds the utility table as declared in the source model,
	// one scale index per row. Evaluators copy this at construction and
	// never mutate it.
	Baseline []int
}

// Block is one instruction of the compiled reverse-Polish program.
type Block struct {
	Kind BlockKind
	// InputIndex is valid when Kind==BlockInput: the column of the
	// options row to push.
	InputIndex int
	// Aggregate is valid when Kind==BlockAggregate.
	Aggregate *AggregateDescriptor
}

// Program is a compiled model: a flat instruction list plus the per-
// aggregate descriptors in the same child-before-parent order the walker
// and the whitelist reducer index by.
type Program struct {
	Blocks     []Block
	Aggregates []*AggregateDescriptor
	// BasicCount is the number of input columns the program expects.
	BasicCount int
}

// Compile walks m once and produces its reverse-Polish program.
func Compile(m *model.Model) (*Program, error) {
	const op = "eval.Compile"
	if err := m.Validate(); err != nil {
		return nil, err
	}

	prog := &Program{BasicCount: len(m.BasicAttributeIndices())}

	basicColumn := 0
	var walk func(i int) error
	walk = func(i int) error {
		a := &m.Attributes[i]
		if a.IsBasic() {
			prog.Blocks = append(prog.Blocks, Block{Kind: BlockInput, InputIndex: basicColumn})
			basicColumn++
			return nil
		}
		for _, c := range a.Children {
			if err := walk(c); err != nil {
				return err
			}
		}

		childSizes := make([]int, len(a.Children))
		for j, c := range a.Children {
			childSizes[j] = m.Attributes[c].ScaleSize()
		}
		coeffs := mixedRadixCoeffs(childSizes)

		rowCount := 1
		for _, s := range childSizes {
			rowCount *= s
		}

		var baseline []int
		if a.Function.Empty() {
			baseline = make([]int, rowCount)
		} else {
			baseline = a.Function.Rows()
			if len(baseline) != rowCount {
				return errs.New(errs.KindParseModel, op, "utility table row count mismatch").WithSize(len(baseline))
			}
		}

		desc := &AggregateDescriptor{
			Index:           len(prog.Aggregates),
			AttrIndex:       i,
			ChildScaleSizes: childSizes,
			Coeffs:          coeffs,
			ScaleSize:       a.ScaleSize(),
			RowCount:        rowCount,
			Baseline:        baseline,
		}
		prog.Aggregates = append(prog.Aggregates, desc)
		prog.Blocks = append(prog.Blocks, Block{Kind: BlockAggregate, Aggregate: desc})
		return nil
	}

	if err := walk(0); err != nil {
		return nil, err
	}
	return prog, nil
}

// mixedRadixCoeffs computes, for a list of child scale sizes, the
// coefficient to multiply each child's value by when forming the row
// index: the last child's coefficient is 1, and each earlier one is the
// running product of the scale sizes that follow it (spec §4.1, §9
// "precompute mixed-radix coefficients at model-compile time").
func mixedRadixCoeffs(scaleSizes []int) []int {
	n := len(scaleSizes)
	coeffs := make([]int, n)
	if n == 0 {
		return coeffs
	}
	coeffs[n-1] = 1
	for i := n - 2; i >= 0; i-- {
		coeffs[i] = scaleSizes[i+1] * coeffs[i+1]
	}
	return coeffs
}
