package kappa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/kappa"
)

func TestPerfectAgreementYieldsOne(t *testing.T) {
	c := kappa.New(3, kappa.Squared)
	observed := []int{0, 1, 2, 1, 0}
	simulated := []int{0, 1, 2, 1, 0}

	v, err := c.Compute(observed, simulated)
	require.NoError(t, err)
	require.InDelta(t, 1.0, v, 1e-9)
}

func TestKappaWithinRange(t *testing.T) {
	for _, variant := range []kappa.Variant{kappa.Squared, kappa.Linear} {
		c := kappa.New(3, variant)
		observed := []int{0, 1, 2, 0, 1, 2}
		simulated := []int{2, 1, 0, 0, 1, 1}

		v, err := c.Compute(observed, simulated)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestComputeRejectsLengthMismatch(t *testing.T) {
	c := kappa.New(3, kappa.Squared)
	_, err := c.Compute([]int{0, 1}, []int{0})
	require.Error(t, err)
}

func TestComputeRejectsOutOfRangeValue(t *testing.T) {
	c := kappa.New(2, kappa.Squared)
	_, err := c.Compute([]int{0, 5}, []int{0, 1})
	require.Error(t, err)
}

func TestCalculatorReusableAcrossCalls(t *testing.T) {
	c := kappa.New(2, kappa.Linear)

	first, err := c.Compute([]int{0, 0, 1, 1}, []int{0, 0, 1, 1})
	require.NoError(t, err)
	require.InDelta(t, 1.0, first, 1e-9)

	second, err := c.Compute([]int{0, 1}, []int{1, 0})
	require.NoError(t, err)
	require.Less(t, second, first)
}
