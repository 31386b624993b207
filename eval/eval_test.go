package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/model"
)

// buildThreeLevel builds PRICE,TECH -> MIDDLE, MIDDLE,SAFETY -> ROOT, all
// 2-valued scales, so coefficients and evaluation order are easy to hand-check.
func buildThreeLevel(t *testing.T) *model.Model {
	t.Helper()
	return &model.Model{
		Attributes: []model.Attribute{
			{ // 0 root
				Name:     "ROOT",
				Scale:    twoValueScale(),
				Children: []int{1, 4},
				Function: model.Function{Low: model.EncodeRows([]int{0, 1, 1, 1})},
			},
			{ // 1 MIDDLE
				Name:     "MIDDLE",
				Scale:    twoValueScale(),
				Children: []int{2, 3},
				Function: model.Function{Low: model.EncodeRows([]int{0, 0, 0, 1})},
			},
			{Name: "PRICE", Scale: twoValueScale()},  // 2
			{Name: "TECH", Scale: twoValueScale()},    // 3
			{Name: "SAFETY", Scale: twoValueScale()},  // 4
		},
	}
}

func twoValueScale() model.Scale {
	return model.Scale{Ordered: true, Values: []model.ScaleValue{{Name: "low"}, {Name: "high"}}}
}

func TestCompileChildBeforeParentOrder(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)

	require.Len(t, prog.Aggregates, 2)
	require.Equal(t, 1, prog.Aggregates[0].AttrIndex) // MIDDLE compiled first
	require.Equal(t, 0, prog.Aggregates[1].AttrIndex) // ROOT compiled last
	require.Equal(t, 3, prog.BasicCount)
}

func TestEvaluateMatchesUtilityTables(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)

	// PRICE=0,TECH=0 -> MIDDLE row 0 -> 0; SAFETY=0 -> ROOT row (0,0) -> 0
	v, err := ev.Evaluate([]int{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 0, v)

	// PRICE=1,TECH=1 -> MIDDLE row 3 -> 1; SAFETY=1 -> ROOT row (1,1) -> 1
	v, err = ev.Evaluate([]int{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// PRICE=1,TECH=0 -> MIDDLE row 2 -> 0; SAFETY=0 -> ROOT row (0,0) -> 0
	v, err = ev.Evaluate([]int{1, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 0, v)
}

func TestSetValuePerturbsEvaluation(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)

	// Force MIDDLE's row 0 (PRICE=0,TECH=0) to scale value 1.
	ev.SetValue(0, 0, 1)

	v, err := ev.Evaluate([]int{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 1, v) // ROOT row (1,0) = 1 per baseline table

	ev.RestoreValue(0, 0)
	v, err = ev.Evaluate([]int{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 0, v)
}

func TestEvaluateRejectsWrongRowWidth(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)

	_, err = ev.Evaluate([]int{0, 0})
	require.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)
	clone := ev.Clone()

	clone.SetValue(0, 0, 1)
	require.Equal(t, 0, ev.ValueAt(0, 0))
	require.Equal(t, 1, clone.ValueAt(0, 0))
}

func TestResetRestoresAllTables(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)

	ev.SetValue(0, 0, 1)
	ev.SetValue(1, 3, 0)
	ev.Reset()

	require.Equal(t, ev.BaselineAt(0, 0), ev.ValueAt(0, 0))
	require.Equal(t, ev.BaselineAt(1, 3), ev.ValueAt(1, 3))
}
