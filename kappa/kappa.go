// Package kappa computes weighted Cohen's kappa between an observed and a
// simulated vector of root-scale indices (spec §4.6), reusing preallocated
// NC×NC matrices across invocations the way the teacher package's matrix
// type keeps one backing store per Dense value instead of reallocating per
// operation.
package kappa

import (
	"fmt"

	"github.com/quesnel/efyj-go/internal/errs"
)

// Variant selects the disagreement weighting function.
type Variant int

const (
	// Squared weights disagreement by (i-j)^2.
	Squared Variant = iota
	// Linear weights disagreement by |i-j|.
	Linear
)

// Calculator holds the NC×NC observed/expected/weight matrices and the
// marginal vectors, all allocated once at construction and overwritten by
// every Compute call — no allocation in steady state (spec §4.6, §5).
type Calculator struct {
	nc      int
	variant Variant

	o []float64 // NC*NC, row-major: observed frequency
	p []float64 // NC: column marginal of O, normalised
	q []float64 // NC: row marginal of O, normalised
	e []float64 // NC*NC: expected matrix
	w []float64 // NC*NC: weight matrix, fixed for the lifetime of the Calculator
}

// New builds a Calculator for a confusion matrix of dimension nc (the root
// attribute's scale size) and the given disagreement weighting.
func New(nc int, variant Variant) *Calculator {
	c := &Calculator{
		nc:      nc,
		variant: variant,
		o:       make([]float64, nc*nc),
		p:       make([]float64, nc),
		q:       make([]float64, nc),
		e:       make([]float64, nc*nc),
		w:       make([]float64, nc*nc),
	}
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			var weight float64
			d := i - j
			switch variant {
			case Squared:
				weight = float64(d * d)
			case Linear:
				weight = absInt(d)
			}
			c.w[i*nc+j] = weight
		}
	}
	return c
}

func absInt(v int) float64 {
	if v < 0 {
		return float64(-v)
	}
	return float64(v)
}

// NC returns the confusion-matrix dimension this Calculator was built for.
func (c *Calculator) NC() int { return c.nc }

// Compute returns the weighted kappa between observed and simulated, two
// equal-length vectors of scale indices in [0, NC) (spec §4.6). Returns
// 1.0 when the expected-agreement denominator is zero.
func (c *Calculator) Compute(observed, simulated []int) (float64, error) {
	const op = "kappa.Calculator.Compute"
	if len(observed) != len(simulated) {
		return 0, errs.New(errs.KindOptionsInconsistent, op,
			fmt.Sprintf("observed has %d elements, simulated has %d", len(observed), len(simulated)))
	}
	n := len(observed)
	if n == 0 {
		return 0, errs.New(errs.KindOptionsInconsistent, op, "empty observation vectors")
	}

	nc := c.nc
	for i := range c.o {
		c.o[i] = 0
	}
	for i := range c.p {
		c.p[i] = 0
		c.q[i] = 0
	}

	for k := 0; k < n; k++ {
		oi, si := observed[k], simulated[k]
		if oi < 0 || oi >= nc || si < 0 || si >= nc {
			return 0, errs.New(errs.KindOptionsInconsistent, op,
				fmt.Sprintf("scale index out of range [0,%d)", nc))
		}
		c.o[oi*nc+si]++
	}

	total := float64(n)
	for i := range c.o {
		c.o[i] /= total
	}

	// P is the column marginal (per spec §4.6), Q the row marginal.
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			c.q[i] += c.o[i*nc+j]
			c.p[j] += c.o[i*nc+j]
		}
	}

	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			c.e[i*nc+j] = c.p[i] * c.q[j]
		}
	}

	var so, se float64
	for i := range c.o {
		so += c.w[i] * c.o[i]
		se += c.w[i] * c.e[i]
	}

	if se == 0 {
		return 1.0, nil
	}
	return 1 - so/se, nil
}
