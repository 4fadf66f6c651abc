package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/sentinel"
)

// ConcurrentResult counts how racing calls ended.
type ConcurrentResult struct {
	Successes int32
	// Conflicts lost a compare-and-set or hit a uniqueness constraint.
	Conflicts int32
	// Rejected were refused by the workflow after another call won,
	// e.g. deciding an insight that is already decided.
	Rejected  int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.Rejected + r.NotFounds + r.Errors
}

// RunConcurrent releases n calls of fn at once through a shared gate and
// classifies each outcome.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg       sync.WaitGroup
		counters [5]atomic.Int32
	)
	gate := make(chan struct{})

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate
			counters[classify(fn(i))].Add(1)
		}()
	}
	close(gate)
	wg.Wait()

	return &ConcurrentResult{
		Successes: counters[outcomeSuccess].Load(),
		Conflicts: counters[outcomeConflict].Load(),
		Rejected:  counters[outcomeRejected].Load(),
		NotFounds: counters[outcomeNotFound].Load(),
		Errors:    counters[outcomeError].Load(),
	}
}

const (
	outcomeSuccess = iota
	outcomeConflict
	outcomeRejected
	outcomeNotFound
	outcomeError
)

func classify(err error) int {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed),
		dErrors.HasCode(err, dErrors.CodeConcurrencyConflict), dErrors.HasCode(err, dErrors.CodeConflict):
		return outcomeConflict
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		return outcomeRejected
	case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
