package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fvc-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialWriter_RunsJobsOneAtATime(t *testing.T) {
	w := newSerialWriter()
	defer w.Close()

	var running, maxRunning, total atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := w.Do(context.Background(), func(ctx context.Context) error {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				total.Add(1)
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), total.Load())
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestSerialWriter_ReturnsJobError(t *testing.T) {
	w := newSerialWriter()
	defer w.Close()

	jobErr := errors.New("job failed")
	err := w.Do(context.Background(), func(ctx context.Context) error {
		return jobErr
	})

	assert.ErrorIs(t, err, jobErr)
}

func TestSerialWriter_CancelledWhileWaiting(t *testing.T) {
	w := newSerialWriter()
	defer w.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = w.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false
	err := w.Do(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
	assert.False(t, ran)
}

func TestSerialWriter_JobContextOutlivesCaller(t *testing.T) {
	w := newSerialWriter()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	err := w.Do(ctx, func(jobCtx context.Context) error {
		cancel()
		return jobCtx.Err()
	})

	assert.NoError(t, err, "a started job must not observe caller cancellation")
}

func TestSerialWriter_Closed(t *testing.T) {
	w := newSerialWriter()
	w.Close()

	err := w.Do(context.Background(), func(ctx context.Context) error {
		t.Error("job must not run after close")
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrServiceClosed)
}
