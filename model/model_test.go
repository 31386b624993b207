package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/model"
)

// buildCarLike constructs a tiny two-level model: root aggregates two basic
// attributes, each with a 2-value scale, giving a 4-row utility table.
func buildCarLike(t *testing.T) *model.Model {
	t.Helper()

	m := &model.Model{
		Name: "toy-car",
		Attributes: []model.Attribute{
			{ // 0: root (aggregate)
				Name:     "ROOT",
				Scale:    model.Scale{Ordered: true, Values: []model.ScaleValue{{Name: "bad"}, {Name: "good"}}},
				Children: []int{1, 2},
				Function: model.Function{Low: model.EncodeRows([]int{0, 0, 0, 1})},
			},
			{ // 1: basic
				Name:  "PRICE",
				Scale: model.Scale{Values: []model.ScaleValue{{Name: "low"}, {Name: "high"}}},
			},
			{ // 2: basic
				Name:  "TECH",
				Scale: model.Scale{Values: []model.ScaleValue{{Name: "low"}, {Name: "high"}}},
			},
		},
	}
	return m
}

func TestBasicAttributeOrdering(t *testing.T) {
	m := buildCarLike(t)

	require.Equal(t, []int{1, 2}, m.BasicAttributeIndices())
	require.Equal(t, []string{"PRICE", "TECH"}, m.BasicAttributeNames())
	require.Equal(t, []int{2, 2}, m.BasicAttributeScaleSizes())
}

func TestAggregateAttributeIndicesChildrenBeforeParent(t *testing.T) {
	m := buildCarLike(t)

	require.Equal(t, []int{0}, m.AggregateAttributeIndices())
}

func TestValidateAcceptsWellFormedModel(t *testing.T) {
	m := buildCarLike(t)

	require.NoError(t, m.Validate())
}

func TestValidateRejectsWrongRowCount(t *testing.T) {
	m := buildCarLike(t)
	m.Attributes[0].Function.Low = "000" // 3 rows, want 4

	err := m.Validate()
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeChild(t *testing.T) {
	m := buildCarLike(t)
	m.Attributes[0].Children = []int{1, 99}

	err := m.Validate()
	require.Error(t, err)
}

func TestValidateRejectsFunctionScaleBeyondSingleDigitCeiling(t *testing.T) {
	m := buildCarLike(t)
	values := make([]model.ScaleValue, model.MaxFunctionScaleSize+1)
	for i := range values {
		values[i] = model.ScaleValue{Name: "v"}
	}
	m.Attributes[0].Scale.Values = values

	err := m.Validate()
	require.Error(t, err)
}

func TestScaleValidateRejectsOversizedScale(t *testing.T) {
	values := make([]model.ScaleValue, model.MaxScaleSize+1)
	s := model.Scale{Values: values}

	require.Error(t, s.Validate("test"))
}

func TestFunctionDigestConcatenatesInCompileOrder(t *testing.T) {
	m := buildCarLike(t)

	require.Equal(t, "0001", m.FunctionDigest())
}
