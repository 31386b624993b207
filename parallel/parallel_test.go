package parallel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/internal/obslog"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/parallel"
	"github.com/quesnel/efyj-go/reduce"
	"github.com/quesnel/efyj-go/walker"
)

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

func TestRunBudgetVisitsEveryCombinationAcrossThreads(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	template := eval.NewEvaluator(prog)
	wl := reduce.Full(prog)

	row := []int{0, 0, 1}
	newEvalFn := func() parallel.EvalFunc {
		return func(ev *eval.Evaluator) (float64, int) {
			v, err := ev.Evaluate(row)
			require.NoError(t, err)
			return float64(v), 1
		}
	}

	cancel := &parallel.CancelFlag{}
	result := parallel.RunBudget(1, 2, template, wl, newEvalFn, cancel, obslog.Nop())

	require.Equal(t, walker.TotalLines(wl), result.KappaEvaluations)
	require.Equal(t, walker.TotalLines(wl), result.EvaluatorInvocations)
	require.Len(t, result.Modifiers, 1)
}

func TestRunBudgetSingleThreadMatchesMultiThread(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	template := eval.NewEvaluator(prog)
	wl := reduce.Full(prog)

	row := []int{1, 1, 0}
	newEvalFn := func() parallel.EvalFunc {
		return func(ev *eval.Evaluator) (float64, int) {
			v, err := ev.Evaluate(row)
			require.NoError(t, err)
			return float64(v), 1
		}
	}

	one := parallel.RunBudget(1, 1, template, wl, newEvalFn, &parallel.CancelFlag{}, obslog.Nop())
	four := parallel.RunBudget(1, 4, template, wl, newEvalFn, &parallel.CancelFlag{}, obslog.Nop())

	require.Equal(t, one.Kappa, four.Kappa)
	require.Equal(t, one.KappaEvaluations, four.KappaEvaluations)
}

func TestRunBudgetRespectsCancellation(t *testing.T) {
	m := buildThreeLevel(t)
	prog, err := eval.Compile(m)
	require.NoError(t, err)
	template := eval.NewEvaluator(prog)
	wl := reduce.Full(prog)

	cancel := &parallel.CancelFlag{}
	cancel.Set()

	newEvalFn := func() parallel.EvalFunc {
		return func(ev *eval.Evaluator) (float64, int) {
			t.Fatal("evalFn must not run once cancellation is set")
			return 0, 0
		}
	}

	result := parallel.RunBudget(1, 2, template, wl, newEvalFn, cancel, obslog.Nop())
	require.Equal(t, 0, result.KappaEvaluations)
	require.Equal(t, 0.0, result.Kappa)
}
