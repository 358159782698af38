package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/gitcat/schema"
)

// ContentResolver resolves a single content request.
type ContentResolver interface {
	Resolve(ctx context.Context, req schema.ContentRequest) (schema.ContentResult, error)
}

var _ ContentResolver = &Resolver{} // Compile-time check

// ResolveAll resolves every request on a pool of workers and returns the
// outcomes in request order. A failed request never affects the others.
// Requests not yet dispatched when ctx ends report the context error.
func ResolveAll(ctx context.Context, resolver ContentResolver, requests []schema.ContentRequest, workers int) []schema.ResolutionOutcome {
	outcomes := make([]schema.ResolutionOutcome, len(requests))
	if len(requests) == 0 {
		return outcomes
	}
	workers = max(1, min(workers, len(requests)))

	idxCh := make(chan int, len(requests))
	var wg sync.WaitGroup

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for idx := range idxCh {
				// Each worker writes to a unique index, which is safe.
				outcomes[idx] = resolveOne(ctx, resolver, requests[idx])
			}
		})
	}

	dispatched := 0
dispatch:
	for i := range requests {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}
		idxCh <- i
		dispatched++
	}
	close(idxCh)
	wg.Wait()

	for i := dispatched; i < len(requests); i++ {
		outcomes[i] = schema.ResolutionOutcome{Request: requests[i], Err: ctx.Err()}
	}
	return outcomes
}

// resolveOne resolves a single request and times it.
func resolveOne(ctx context.Context, resolver ContentResolver, req schema.ContentRequest) schema.ResolutionOutcome {
	start := time.Now()
	res, err := resolver.Resolve(ctx, req)
	return schema.ResolutionOutcome{
		Request:  req,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}
}
