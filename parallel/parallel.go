// Package parallel implements the fixed thread-pool coordinator (spec
// §4.8): each worker owns a private evaluator, walker, and kappa
// calculator, shares the model and options matrix read-only, and publishes
// its best result per budget through a single mutex-guarded aggregator.
package parallel

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quesnel/efyj-go/eval"
	"github.com/quesnel/efyj-go/internal/obslog"
	"github.com/quesnel/efyj-go/reduce"
	"github.com/quesnel/efyj-go/sink"
	"github.com/quesnel/efyj-go/walker"
)

// CancelFlag is the shared atomic stop flag polled once per inner
// iteration and between budgets (spec §5 "a single atomic boolean").
type CancelFlag struct {
	stop atomic.Bool
}

// Set raises the flag; every worker observing it returns to the join point
// without publishing further results for the in-flight budget.
func (c *CancelFlag) Set() { c.stop.Store(true) }

// IsSet reports whether cancellation has been requested.
func (c *CancelFlag) IsSet() bool { return c.stop.Load() }

// EvalFunc scores one candidate modifier set already applied to ev,
// returning the kappa and the number of evaluator invocations it performed
// — supplied by the search driver, which knows whether this is an
// adjustment or a prediction scoring pass.
type EvalFunc func(ev *eval.Evaluator) (kappaValue float64, evaluatorInvocations int)

// EvalFuncFactory builds one EvalFunc per worker goroutine. Each call must
// return a closure with its own private scratch state (kappa.Calculator,
// simulated-vector buffer) — workers run concurrently and never share
// evaluation state beyond the read-only model and options matrix (spec §5).
type EvalFuncFactory func() EvalFunc

// aggregator is the single mutex-protected structure the coordinator
// pushes worker results through. RunBudget builds one per budget k; it
// holds that budget's best kappa, best modifier set, and cumulative loop
// and evaluator-invocation counts.
type aggregator struct {
	mu                   sync.Mutex
	bestKappa            float64
	bestModifiers        []walker.Modifier
	totalLoopCount       int
	evaluatorInvocations int
}

func newAggregator() *aggregator {
	return &aggregator{bestKappa: math.Inf(-1)}
}

// push records one worker's partial result. If kappa strictly exceeds the
// stored value it replaces the best (first winner kept on ties, per spec
// §4.8 and the §9 open question "preserve first wins"); the loop and
// evaluation counters always accumulate.
func (a *aggregator) push(kappaValue float64, modifiers []walker.Modifier, loops, evals int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalLoopCount += loops
	a.evaluatorInvocations += evals
	if kappaValue > a.bestKappa {
		a.bestKappa = kappaValue
		a.bestModifiers = modifiers
	}
}

func (a *aggregator) snapshot() (float64, []walker.Modifier, int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bestKappa, a.bestModifiers, a.totalLoopCount, a.evaluatorInvocations
}

// RunBudget enumerates every budget-k modifier set across threads workers,
// striding T over the line sequence (spec §4.8 "every thread performs the
// complete outer walk, but advances next_line() T times... stride T over
// the line sequence, starting from thread id"). Each thread gets its own
// Evaluator clone via template.Clone() and its own EvalFunc from newEvalFn;
// that EvalFunc scores the perturbation currently applied to the clone it
// is handed, and must read only that evaluator.
func RunBudget(budget, threads int, template *eval.Evaluator, whitelist reduce.Whitelists, newEvalFn EvalFuncFactory, cancel *CancelFlag, logger *obslog.Logger) sink.Result {
	start := time.Now()
	agg := newAggregator()

	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(t, threads, template.Clone(), whitelist, budget, newEvalFn(), cancel, agg)
		}()
	}
	wg.Wait()

	kappaValue, modifiers, loops, evals := agg.snapshot()
	if math.IsInf(kappaValue, -1) {
		kappaValue = 0
	}
	result := sink.Result{
		Budget:               budget,
		Kappa:                kappaValue,
		Modifiers:            modifiers,
		Elapsed:              time.Since(start),
		KappaEvaluations:     loops,
		EvaluatorInvocations: evals,
	}
	logger.Infow("search budget completed",
		"budget", budget,
		"best_kappa", result.Kappa,
		"loop_count", result.KappaEvaluations,
		"elapsed", result.Elapsed,
		"modifiers", result.Modifiers,
	)
	return result
}

func runWorker(threadID, threads int, ev *eval.Evaluator, whitelist reduce.Whitelists, budget int, evalFn EvalFunc, cancel *CancelFlag, agg *aggregator) {
	w, err := walker.New(ev, whitelist, budget)
	if err != nil {
		return
	}
	for i := 0; i < threadID; i++ {
		if !w.NextLine() {
			return // exhausted before reaching this thread's starting offset
		}
	}

	bestKappa := math.Inf(-1)
	var bestModifiers []walker.Modifier
	loops := 0
	evals := 0

	for {
		if cancel.IsSet() {
			break
		}
		w.InitNextValue()
		for w.NextValue() {
			if cancel.IsSet() {
				break
			}
			kappaValue, invocations := evalFn(ev)
			loops++
			evals += invocations
			if kappaValue > bestKappa {
				bestKappa = kappaValue
				bestModifiers = append([]walker.Modifier(nil), w.Snapshot()...)
			}
		}

		advanced := true
		for s := 0; s < threads; s++ {
			if !w.NextLine() {
				advanced = false
				break
			}
		}
		if !advanced {
			break
		}
	}

	if cancel.IsSet() {
		return
	}
	agg.push(bestKappa, bestModifiers, loops, evals)
}
