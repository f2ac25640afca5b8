package healthcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeQueues struct{ err error }

func (f fakeQueues) IsConnectionHealthy() error { return f.err }

type fakeDatabase struct{ err error }

func (f fakeDatabase) DoHealthCheck(ctx context.Context) error { return f.err }

func withTerminateCounter(t *testing.T) *int {
	calls := 0
	terminate = func() { calls++ }
	t.Cleanup(func() { terminate = terminateService })
	return &calls
}

func TestRunHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		calls := withTerminateCounter(t)
		runHealthCheck(ctx, fakeQueues{}, fakeDatabase{}, time.Second)
		assert.Equal(t, 0, *calls)
	})

	t.Run("queue down", func(t *testing.T) {
		calls := withTerminateCounter(t)
		runHealthCheck(ctx, fakeQueues{err: errors.New("closed")}, fakeDatabase{}, time.Second)
		assert.Equal(t, 1, *calls)
	})

	t.Run("database down", func(t *testing.T) {
		calls := withTerminateCounter(t)
		runHealthCheck(ctx, nil, fakeDatabase{err: errors.New("unreachable")}, time.Second)
		assert.Equal(t, 1, *calls)
	})
}
