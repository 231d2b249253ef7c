// Package worker provides a small generic pool for running independent
// units of work with bounded concurrency.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Outcome pairs an input with whatever processing it produced.
type Outcome[T any, R any] struct {
	Input T
	Value R
	Err   error
}

// Func processes a single input.
type Func[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs a Func over a slice of inputs with a fixed number of workers.
type Pool[T any, R any] struct {
	workers int
	fn      Func[T, R]
}

// NewPool creates a pool of the given size. Sizes below one are raised to
// one.
func NewPool[T any, R any](workers int, fn Func[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		fn:      fn,
	}
}

// Run processes every input and returns one Outcome per input, in input
// order. Cancelling ctx stops dispatch and lets in-flight work finish;
// inputs never dispatched keep zero-valued outcomes.
func (p *Pool[T, R]) Run(ctx context.Context, inputs []T) []Outcome[T, R] {
	outcomes := make([]Outcome[T, R], len(inputs))
	indexCh := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-indexCh:
					if !ok {
						return
					}
					value, err := p.fn(ctx, inputs[idx])
					outcomes[idx] = Outcome[T, R]{
						Input: inputs[idx],
						Value: value,
						Err:   err,
					}
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}

send:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break send
		case indexCh <- i:
		}
	}
	close(indexCh)

	wg.Wait()
	return outcomes
}
