package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsEverything(t *testing.T) {
	pp := New(3)

	var n int32
	for i := 0; i < 20; i++ {
		pp.Add(func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		})
	}

	assert.NoError(t, pp.Wait())
	assert.Equal(t, int32(20), atomic.LoadInt32(&n))
}

func TestPool_FirstErrorCancelsContext(t *testing.T) {
	pp := New(1)
	boom := errors.New("boom")

	pp.Add(func(ctx context.Context) error { return boom })

	var cancelled int32
	pp.Add(func(ctx context.Context) error {
		if ctx.Err() != nil {
			atomic.StoreInt32(&cancelled, 1)
		}
		return nil
	})

	assert.Equal(t, boom, pp.Wait())
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))

	pp.Reset(context.Background())
	pp.Add(func(ctx context.Context) error { return ctx.Err() })
	assert.NoError(t, pp.Wait())
}

func TestPool_BatchContextEndsWithBatch(t *testing.T) {
	pp := New(2)

	var batch context.Context
	pp.Add(func(ctx context.Context) error {
		batch = ctx
		return ctx.Err()
	})
	assert.NoError(t, pp.Wait())
	assert.ErrorIs(t, batch.Err(), context.Canceled)

	// Reset releases a batch that was never waited for
	pp.Reset(context.Background())
	pending := pp.(*pool).ctx
	pp.Reset(context.Background())
	assert.ErrorIs(t, pending.Err(), context.Canceled)
	assert.NoError(t, pp.(*pool).ctx.Err())
}
