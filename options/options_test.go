package options_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/options"
)

func sampleMatrix() *options.Matrix {
	return &options.Matrix{
		BasicNames: []string{"PRICE", "TECH"},
		HasPlace:   false,
		Rows: []options.Option{
			{Identifier: "a", Department: 1, Year: 2020, Observed: 0, Values: []int{0, 0}},
			{Identifier: "b", Department: 2, Year: 2021, Observed: 1, Values: []int{1, 0}},
			{Identifier: "c", Department: 3, Year: 2022, Observed: 2, Values: []int{1, 1}},
		},
	}
}

func TestValidateAcceptsWellFormedMatrix(t *testing.T) {
	m := sampleMatrix()
	require.NoError(t, m.Validate(3))
}

func TestValidateRejectsRowWidthMismatch(t *testing.T) {
	m := sampleMatrix()
	m.Rows[0].Values = []int{0}
	require.Error(t, m.Validate(3))
}

func TestValidateRejectsObservedOutOfRange(t *testing.T) {
	m := sampleMatrix()
	m.Rows[0].Observed = 99
	require.Error(t, m.Validate(3))
}

func TestBuildSubdatasetsAllMutuallyRelated(t *testing.T) {
	m := sampleMatrix()
	sub, err := options.BuildSubdatasets(m, false)
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, sub.Members[0])
	require.Equal(t, []int{0, 2}, sub.Members[1])
	require.Equal(t, []int{0, 1}, sub.Members[2])

	// Each alternative's subdataset is distinct here, so each gets its own key.
	require.Equal(t, 0, sub.ReductionKey[0])
	require.Equal(t, 1, sub.ReductionKey[1])
	require.Equal(t, 2, sub.ReductionKey[2])
}

func TestBuildSubdatasetsFailsOnEmptySubdataset(t *testing.T) {
	m := sampleMatrix()
	m.Rows[1].Department = m.Rows[0].Department // now a,b share department

	// a's only potential partner (b) is excluded by shared department;
	// c remains related to both, so a's subdataset is still {c}. Force a
	// genuinely empty subdataset by making every pair share a coordinate.
	for i := range m.Rows {
		m.Rows[i].Department = 1
	}

	_, err := options.BuildSubdatasets(m, false)
	require.Error(t, err)
}

func TestBuildSubdatasetsSharedKeyForIdenticalSubdatasets(t *testing.T) {
	m := sampleMatrix()
	m.Rows = append(m.Rows, options.Option{
		Identifier: "d", Department: 1, Year: 2020, Observed: 0, Values: []int{0, 1},
	})
	// d shares a's department and year, so a and d are unrelated to each
	// other and both related to exactly b and c: identical Members slices.
	sub, err := options.BuildSubdatasets(m, false)
	require.NoError(t, err)
	require.Len(t, sub.ReductionKey, 4)
	require.Equal(t, []int{1, 2}, sub.Members[0])
	require.Equal(t, []int{1, 2}, sub.Members[3])
	require.Equal(t, sub.ReductionKey[0], sub.ReductionKey[3])
	require.NotEqual(t, sub.ReductionKey[0], sub.ReductionKey[1])
	require.NotEqual(t, sub.ReductionKey[1], sub.ReductionKey[2])
}

func TestObservedColumn(t *testing.T) {
	m := sampleMatrix()
	require.Equal(t, []int{0, 1, 2}, m.ObservedColumn())
}
