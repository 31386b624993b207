package reduce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/reduce"
)

// buildThreeLevel mirrors the eval package's fixture: PRICE,TECH -> MIDDLE,
// MIDDLE,SAFETY -> ROOT, all 2-valued scales.
func buildThreeLevel(t *testing.T) *model.Model {
	t.Helper()
	scale := model.Scale{Ordered: true, Values: []model.ScaleValue{{Name: "low"}, {Name: "high"}}}
	return &model.Model{
		Attributes: []model.Attribute{
			{
				Name:     "ROOT",
				Scale:    scale,
				Children: []int{1, 4},
				Function: model.Function{Low: model.EncodeRows([]int{0, 1, 1, 1})},
			},
			{
				Name:     "MIDDLE",
				Scale:    scale,
				Children: []int{2, 3},
				Function: model.Function{Low: model.EncodeRows([]int{0, 0, 0, 1})},
			},
			{Name: "PRICE", Scale: scale},
			{Name: "TECH", Scale: scale},
			{Name: "SAFETY", Scale: scale},
		},
	}
}

func TestReduceOnlyMarksObservedReachableRows(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)

	// Only one observed row: PRICE=0,TECH=0,SAFETY=1.
	wl := reduce.Reduce(prog, [][]int{{0, 0, 1}})

	require.Len(t, wl, 2)
	// MIDDLE (compiled first) only ever sees row (PRICE=0,TECH=0) => row 0.
	require.Equal(t, []int{0}, wl[0])
	// ROOT's first child (MIDDLE) is itself an aggregate, so its value is
	// unknown and ROOT's whitelist must expand over MIDDLE's full scale
	// (2 values) crossed with the known SAFETY=1, giving rows (0,1) and (1,1).
	require.Equal(t, []int{1, 3}, wl[1])
}

func TestFullSetsEntireRowRange(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)

	wl := reduce.Full(prog)
	require.Equal(t, []int{0, 1, 2, 3}, wl[0])
	require.Equal(t, []int{0, 1, 2, 3}, wl[1])
}

func TestWhitelistSoundnessMatchesFullEvaluation(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	ev := eval.NewEvaluator(prog)

	row := []int{0, 0, 1}
	want, err := ev.Evaluate(row)
	require.NoError(t, err)

	wl := reduce.Reduce(prog, [][]int{row})
	require.Contains(t, wl[1], 1) // ROOT row reached by this exact row: PRICE=0,TECH=0 -> MIDDLE=0, SAFETY=1 -> ROOT row (0,1)=1

	got, err := ev.Evaluate(row)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUnusedScaleValuesReportsUnreachedCodomainValues(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)

	wl := reduce.Reduce(prog, [][]int{{0, 0, 0}}) // MIDDLE whitelist {0}; ROOT whitelist {0,2} (MIDDLE unknown, SAFETY=0)
	missing := reduce.UnusedScaleValues(prog, wl)

	require.Len(t, missing, 2)
	require.Equal(t, []int{1}, missing[0]) // MIDDLE's whitelist is {0}, baseline[0]=0, scale value 1 unused
	require.Empty(t, missing[1])           // ROOT's whitelist is {0,2}, baseline[0]=0 and baseline[2]=1, no value unused
}
