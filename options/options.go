// Package options holds the observed options matrix (alternatives) and the
// subdataset index prediction search needs, per spec §3 and §4.5.
package options

import (
	"fmt"

	"github.com/quesnel/efyj-go/internal/errs"
)

// NoPlace marks an Option whose place/rank is absent (the CSV header shape
// without a place column: simulation;department;year, spec §6.2).
const NoPlace = -1

// Option is one observed alternative: a full basic-attribute value
// assignment plus the metadata the subdataset predicate and the writeback
// path need (spec §3 "Option (alternative)").
type Option struct {
	Identifier string
	// Place is NoPlace when the source CSV carried no place column.
	Place      int
	Department int
	Year       int
	// Observed is the root-scale index recorded for this alternative.
	Observed int
	// Values are basic-attribute scale indices, column-aligned to Matrix.BasicNames.
	Values []int
}

// Matrix is the dense options matrix: one Option per alternative, column-
// aligned to the model's basic-attribute order (spec §3 "Options matrix").
type Matrix struct {
	BasicNames []string
	// HasPlace records whether Place fields are meaningful across this
	// matrix — the CSV header shape that produced it (spec §4.9 open
	// question: "document both predicates... let the caller choose").
	HasPlace bool
	Rows     []Option
}

// Len returns the number of observed alternatives.
func (m *Matrix) Len() int { return len(m.Rows) }

// Validate checks that every row carries exactly one value per basic
// attribute and that the observed root index is within [0, rootScaleSize)
// (spec §4.5).
func (m *Matrix) Validate(rootScaleSize int) error {
	const op = "options.Matrix.Validate"
	for i, r := range m.Rows {
		if len(r.Values) != len(m.BasicNames) {
			return errs.New(errs.KindOptionsInconsistent, op,
				fmt.Sprintf("row %d: %d values, want %d", i, len(r.Values), len(m.BasicNames)))
		}
		if r.Observed < 0 || r.Observed >= rootScaleSize {
			return errs.New(errs.KindOptionsInconsistent, op,
				fmt.Sprintf("row %d: observed value %d out of range [0,%d)", i, r.Observed, rootScaleSize))
		}
	}
	return nil
}

// ObservedColumn returns the observed root values of every row, in row order
// — the left-hand side every kappa computation in §4.6 needs.
func (m *Matrix) ObservedColumn() []int {
	out := make([]int, len(m.Rows))
	for i, r := range m.Rows {
		out[i] = r.Observed
	}
	return out
}

// Subdatasets holds, per alternative, the ordered indices of every other
// alternative in its prediction learning set, plus the reduction key that
// groups alternatives sharing an identical subdataset (spec §3, §4.5).
type Subdatasets struct {
	// Members[i] lists the indices of alternatives related to alternative i.
	Members [][]int
	// ReductionKey[i] is shared by alternative j iff Members[i] and
	// Members[j], as ordered lists, are identical.
	ReductionKey []int
}

// BuildSubdatasets computes, for every alternative, the list of other
// alternatives with a different (department, year) — and, when hasPlace is
// true, a different place too — then assigns each distinct subdataset a
// reduction key by first-occurrence position (spec §4.5 "straight nested
// scan... reduction key by hashing each subdataset into the first-occurrence
// position"). Fails with OptionsInconsistent (EmptySubdataset) if any
// alternative's subdataset is empty.
func BuildSubdatasets(m *Matrix, hasPlace bool) (*Subdatasets, error) {
	const op = "options.BuildSubdatasets"
	n := len(m.Rows)
	members := make([][]int, n)
	for i := range m.Rows {
		for j := range m.Rows {
			if i == j {
				continue
			}
			if related(&m.Rows[i], &m.Rows[j], hasPlace) {
				members[i] = append(members[i], j)
			}
		}
		if len(members[i]) == 0 {
			return nil, errs.New(errs.KindOptionsInconsistent, op,
				fmt.Sprintf("alternative %d has an empty subdataset", i))
		}
	}

	keys := make([]int, n)
	seen := make([]([]int), 0, n)
	for i, mem := range members {
		key := -1
		for k, other := range seen {
			if sameSequence(mem, other) {
				key = k
				break
			}
		}
		if key < 0 {
			key = len(seen)
			seen = append(seen, mem)
		}
		keys[i] = key
	}

	return &Subdatasets{Members: members, ReductionKey: keys}, nil
}

// related reports whether alternatives a and b belong to each other's
// subdataset: different department and different year, and — when hasPlace
// is true — different place (spec §4.5; the place predicate is the §9 open
// question left as a caller-selectable flag).
func related(a, b *Option, hasPlace bool) bool {
	if a.Department == b.Department {
		return false
	}
	if a.Year == b.Year {
		return false
	}
	if hasPlace && a.Place == b.Place {
		return false
	}
	return true
}

func sameSequence(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
