package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/gitcat/schema"
)

// funcResolver adapts a function to ContentResolver.
type funcResolver func(ctx context.Context, req schema.ContentRequest) (schema.ContentResult, error)

func (f funcResolver) Resolve(ctx context.Context, req schema.ContentRequest) (schema.ContentResult, error) {
	return f(ctx, req)
}

func makeRequests(n int) []schema.ContentRequest {
	requests := make([]schema.ContentRequest, n)
	for i := range n {
		requests[i] = schema.ContentRequest{FilePath: fmt.Sprintf("/repo/f%03d.txt", i), RepoRoot: "/repo"}
	}
	return requests
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	resolver := funcResolver(func(_ context.Context, req schema.ContentRequest) (schema.ContentResult, error) {
		return schema.ContentResult{Content: req.RelativePath(), Source: schema.SourceIndex}, nil
	})

	for _, workers := range []int{1, 4, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			requests := makeRequests(50)
			outcomes := ResolveAll(context.Background(), resolver, requests, workers)
			require.Len(t, outcomes, 50)
			for i, o := range outcomes {
				assert.Equal(t, requests[i], o.Request)
				assert.Equal(t, fmt.Sprintf("f%03d.txt", i), o.Result.Content)
				assert.NoError(t, o.Err)
			}
		})
	}
}

func TestResolveAll_IsolatesFailures(t *testing.T) {
	boom := errors.New("fatal: bad object")
	resolver := funcResolver(func(_ context.Context, req schema.ContentRequest) (schema.ContentResult, error) {
		if req.FilePath == "/repo/f001.txt" {
			return schema.ContentResult{}, boom
		}
		return schema.ContentResult{Content: "ok", Source: schema.SourceIndex}, nil
	})

	outcomes := ResolveAll(context.Background(), resolver, makeRequests(3), 2)
	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Same(t, boom, outcomes[1].Err)
	assert.Equal(t, schema.StatusFailed, outcomes[1].Status())
	assert.NoError(t, outcomes[2].Err)
	assert.Equal(t, "ok", outcomes[2].Result.Content)
}

func TestResolveAll_Empty(t *testing.T) {
	outcomes := ResolveAll(context.Background(), funcResolver(nil), nil, 4)
	assert.Empty(t, outcomes)
}

func TestResolveAll_ZeroWorkers(t *testing.T) {
	var calls atomic.Int32
	resolver := funcResolver(func(_ context.Context, _ schema.ContentRequest) (schema.ContentResult, error) {
		calls.Add(1)
		return schema.ContentResult{}, nil
	})
	outcomes := ResolveAll(context.Background(), resolver, makeRequests(5), 0)
	assert.Len(t, outcomes, 5)
	assert.Equal(t, int32(5), calls.Load())
}

func TestResolveAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	resolver := funcResolver(func(_ context.Context, _ schema.ContentRequest) (schema.ContentResult, error) {
		calls.Add(1)
		return schema.ContentResult{}, nil
	})

	outcomes := ResolveAll(ctx, resolver, makeRequests(10), 2)
	require.Len(t, outcomes, 10)
	assert.Zero(t, calls.Load())
	for i, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Equal(t, fmt.Sprintf("/repo/f%03d.txt", i), o.Request.FilePath)
	}
}
