package semaphore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSemaphore_BlocksWhenFull(t *testing.T) {
	sema := New(1)

	assert.NoError(t, sema.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sema.Acquire(ctx), context.DeadlineExceeded)

	sema.Release()
	assert.NoError(t, sema.Acquire(context.Background()))
}
