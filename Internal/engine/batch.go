package engine

import (
	"context"
	"sync"

	"github.com/tidemark/signalforge/Internal/types"
)

// BatchRequest is one (symbol, window) evaluation.
type BatchRequest struct {
	Symbol string
	Bars   []types.Bar
	Style  types.Style
}

// BatchResult pairs a request's symbol with its decision or error.
type BatchResult struct {
	Symbol   string
	Decision types.SignalDecision
	Err      error
}

// EvaluateBatch runs the requests across a bounded worker pool and
// returns results in request order. Evaluations share nothing, so the
// pool size is purely a throughput knob. A canceled context marks the
// remaining requests with its error instead of evaluating them.
func (e *Engine) EvaluateBatch(ctx context.Context, reqs []BatchRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	workers := e.cfg.Engine.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				req := reqs[i]
				results[i].Symbol = req.Symbol
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Decision, results[i].Err = e.Evaluate(req.Bars, req.Style)
			}
		}()
	}

	for i := range reqs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}
