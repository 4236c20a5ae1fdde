package service

import (
	"context"
	"sync"

	"fvc-catalog/internal/model"
)

type writeJob struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// serialWriter runs submitted jobs one at a time on a single goroutine.
type serialWriter struct {
	jobs      chan writeJob
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newSerialWriter() *serialWriter {
	w := &serialWriter{
		jobs: make(chan writeJob),
		stop: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *serialWriter) run() {
	defer w.wg.Done()
	for {
		select {
		case job := <-w.jobs:
			job.done <- job.fn(job.ctx)
		case <-w.stop:
			return
		}
	}
}

// Do waits for the writer to pick up fn and returns its result. Waiting is
// abandoned when ctx is done; once fn has started it runs to completion
// with a context that is no longer cancelled by the caller.
func (w *serialWriter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	job := writeJob{
		ctx:  context.WithoutCancel(ctx),
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case w.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stop:
		return model.ErrServiceClosed
	}

	return <-job.done
}

// Close stops the writer after the job in progress, if any.
func (w *serialWriter) Close() {
	w.closeOnce.Do(func() {
		close(w.stop)
	})
	w.wg.Wait()
}
