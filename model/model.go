// Package model defines the in-memory DEX model tree: attributes, scales,
// and the utility tables that aggregate attributes use to combine their
// children's scale values into their own.
//
// The tree is stored as an indexed slice with forward-only child indices
// (design note: "store the tree as an indexed vector with forward-only
// child indices; derive parent relations on demand"), mirroring the way
// the teacher package (lvlath/core) keeps its Graph as flat, lock-guarded
// slices rather than a web of pointers. A Model is built once by an
// external reader (xmlmodel) and never mutated afterwards; per-worker
// evaluators copy out the utility tables they need to perturb.
package model

import (
	"fmt"

	"github.com/quesnel/efyj-go/internal/errs"
)

// MaxScaleSize is the largest number of scale values a Scale may hold
// (spec §3: "Size is constrained to the closed interval [1, 127]").
const MaxScaleSize = 127

// MaxFunctionScaleSize is the largest codomain scale size an aggregate
// attribute's utility table can hold: Function.Low packs one scale index
// per byte as an ASCII digit ('0'-'9'), exactly as the original solver's
// recursive_fill decoded it (`id - '0'`) — a format ceiling of the DEXi
// LOW encoding itself, below the structural MaxScaleSize.
const MaxFunctionScaleSize = 10

// ScaleValue names one point on an ordered or nominal scale.
type ScaleValue struct {
	Name        string
	Description string
	// Group is a label index into Model.Groups, or -1 when the scale
	// value carries no group.
	Group int
}

// Scale is an ordered sequence of named scale values.
type Scale struct {
	// Ordered marks the scale as monotone (DEX "ORDER" != NONE).
	Ordered bool
	// Interval marks the scale as an interval scale (vs. purely ordinal).
	Interval bool
	Values   []ScaleValue
}

// Size returns the number of scale values.
func (s Scale) Size() int { return len(s.Values) }

// FindValue returns the index of the scale value named name, or false.
func (s Scale) FindValue(name string) (int, bool) {
	for i, v := range s.Values {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the [1, 127] size constraint (spec §3, §6.1 ScaleTooBig).
func (s Scale) Validate(op string) error {
	if len(s.Values) < 1 || len(s.Values) > MaxScaleSize {
		return errs.New(errs.KindParseModel, op,
			fmt.Sprintf("scale size %d out of range [1,%d]", len(s.Values), MaxScaleSize)).
			WithSize(len(s.Values))
	}
	return nil
}

// Function is an aggregate attribute's utility table, kept in the source
// model's own serialised shape (a digit string of scale indices, one per
// cartesian-product row) alongside the auxiliary strings DEXi round-trips
// verbatim (spec §6.1: "entered/consist/weights strings retained verbatim").
type Function struct {
	// Low holds one scale-index digit per row, row-major over the
	// mixed-radix product of child scales (spec §3 Utility table).
	Low string
	// Entered, Consist, Weights are opaque DEXi metadata round-tripped
	// byte-for-byte; the evaluator never reads them.
	Entered string
	Consist string
	Weights string
}

// Empty reports whether no function has been defined yet.
func (f Function) Empty() bool {
	return f.Low == "" && f.Entered == "" && f.Consist == "" && f.Weights == ""
}

// Rows decodes Low into a slice of scale indices, one per utility-table row.
// Each byte of Low is a single ASCII digit ('0'-'9'), so this only decodes
// scale indices in [0, MaxFunctionScaleSize); Model.Validate rejects any
// aggregate attribute whose scale would overflow that ceiling before it
// reaches here.
func (f Function) Rows() []int {
	out := make([]int, len(f.Low))
	for i := 0; i < len(f.Low); i++ {
		out[i] = int(f.Low[i] - '0')
	}
	return out
}

// EncodeRows serialises scale indices back into a Low digit string. Callers
// must keep every value below MaxFunctionScaleSize; EncodeRows itself does
// not validate, since it is also used to build deliberately-small fixtures.
func EncodeRows(rows []int) string {
	buf := make([]byte, len(rows))
	for i, v := range rows {
		buf[i] = byte('0' + v)
	}
	return string(buf)
}

// Attribute is one node of the model tree: basic (a leaf, an evaluator
// input) when it has no children, aggregate (an internal node with a
// utility table) otherwise.
type Attribute struct {
	Name        string
	Description string
	Scale       Scale
	// Children holds indices into Model.Attributes, in declared order;
	// empty for basic attributes.
	Children []int
	// Function is only meaningful when len(Children) > 0.
	Function Function
	// EmbeddedOptionValues carries the model's own per-option scale
	// values for this attribute, when the DEXi file embeds options
	// (spec §6.1 "optional option values").
	EmbeddedOptionValues []int
}

// IsBasic reports whether the attribute is a leaf (an evaluator input).
func (a Attribute) IsBasic() bool { return len(a.Children) == 0 }

// IsAggregate reports whether the attribute has a utility table.
func (a Attribute) IsAggregate() bool { return len(a.Children) > 0 }

// ScaleSize returns the number of values on this attribute's scale.
func (a Attribute) ScaleSize() int { return a.Scale.Size() }

// RowCount returns the number of rows of an aggregate attribute's utility
// table: the product of its children's scale sizes.
func (a Attribute) RowCount(m *Model) int {
	rows := 1
	for _, c := range a.Children {
		rows *= m.Attributes[c].ScaleSize()
	}
	return rows
}

// Model is the full DEX attribute tree plus metadata retained verbatim for
// round-tripping (spec §3, §6.1). Reports, OptDataType and OptLevels are
// copied by efyj.MergeOptions and sink.ApplyModifiers, but xmlmodel neither
// reads nor writes them, so they do not survive a file round trip.
type Model struct {
	Name        string
	Version     string
	Created     string
	Description []string
	Reports     string
	OptDataType string
	OptLevels   string
	// Options holds free-text option identifiers the model file embeds
	// under its root <OPTION> elements (spec §6.1); independent from any
	// CSV-sourced Options (package options).
	Options []string
	// Groups are scale-value group labels, referenced by ScaleValue.Group.
	Groups []string
	// Attributes is the full tree, index 0 is always the root.
	Attributes []Attribute
}

// Root returns the root attribute (index 0).
func (m *Model) Root() *Attribute { return &m.Attributes[0] }

// Empty reports whether the model has no attributes at all.
func (m *Model) Empty() bool { return len(m.Attributes) == 0 }

// BasicAttributeIndices returns the indices (into Attributes) of every
// basic attribute, in left-to-right leaf order — the column order the
// evaluator and the options matrix agree on (spec §3 "Options matrix...
// column-aligned to the basic-attribute order used by the evaluator").
func (m *Model) BasicAttributeIndices() []int {
	var out []int
	var walk func(i int)
	walk = func(i int) {
		a := &m.Attributes[i]
		if a.IsBasic() {
			out = append(out, i)
			return
		}
		for _, c := range a.Children {
			walk(c)
		}
	}
	if len(m.Attributes) > 0 {
		walk(0)
	}
	return out
}

// BasicAttributeNames returns the Name of each basic attribute, column-
// aligned with BasicAttributeIndices — the §6.3 information() contract.
func (m *Model) BasicAttributeNames() []string {
	idx := m.BasicAttributeIndices()
	names := make([]string, len(idx))
	for i, a := range idx {
		names[i] = m.Attributes[a].Name
	}
	return names
}

// BasicAttributeScaleSizes returns the scale size of each basic attribute,
// column-aligned with BasicAttributeIndices — the other half of the
// information() contract.
func (m *Model) BasicAttributeScaleSizes() []int {
	idx := m.BasicAttributeIndices()
	sizes := make([]int, len(idx))
	for i, a := range idx {
		sizes[i] = m.Attributes[a].ScaleSize()
	}
	return sizes
}

// AggregateAttributeIndices returns the indices of every aggregate
// attribute, in compile order: children before parent, matching the
// reverse-Polish program the evaluator walks (spec §4.1). This is the
// order the original solver_stack assigns internal attribute ids in.
func (m *Model) AggregateAttributeIndices() []int {
	var out []int
	var walk func(i int)
	walk = func(i int) {
		a := &m.Attributes[i]
		for _, c := range a.Children {
			walk(c)
		}
		if a.IsAggregate() {
			out = append(out, i)
		}
	}
	if len(m.Attributes) > 0 {
		walk(0)
	}
	return out
}

// FunctionDigest concatenates every aggregate attribute's Function.Low in
// AggregateAttributeIndices order, mirroring solver_stack::string_functions
// — a compact fixture/debugging dump of the whole model's utility tables.
func (m *Model) FunctionDigest() string {
	digest := ""
	for _, i := range m.AggregateAttributeIndices() {
		digest += m.Attributes[i].Function.Low
	}
	return digest
}

// Validate checks the structural invariants spec §3 requires: a non-empty
// attribute list (index 0 is taken as the root), scale sizes in range,
// child indices in range, and every aggregate's utility table either empty
// (not yet computed) or exactly matching its row count. It does not check
// that the children form a tree (no cycles, no shared children).
func (m *Model) Validate() error {
	const op = "Model.Validate"
	if m.Empty() {
		return errs.New(errs.KindParseModel, op, "model has no attributes")
	}
	for i := range m.Attributes {
		a := &m.Attributes[i]
		if err := a.Scale.Validate(op); err != nil {
			return err
		}
		for _, c := range a.Children {
			if c < 0 || c >= len(m.Attributes) {
				return errs.New(errs.KindParseModel, op,
					fmt.Sprintf("attribute %d references out-of-range child %d", i, c))
			}
		}
		if a.IsAggregate() && !a.Function.Empty() {
			if a.ScaleSize() > MaxFunctionScaleSize {
				return errs.New(errs.KindParseModel, op,
					fmt.Sprintf("attribute %q scale size %d exceeds the utility table's single-digit encoding ceiling %d",
						a.Name, a.ScaleSize(), MaxFunctionScaleSize)).
					WithSize(a.ScaleSize())
			}
			want := a.RowCount(m)
			if got := len(a.Function.Rows()); got != want {
				return errs.New(errs.KindParseModel, op,
					fmt.Sprintf("attribute %q utility table has %d rows, want %d", a.Name, got, want))
			}
		}
	}
	return nil
}
