package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/propconnect/propconnect/pkg/logger"
)

// DefaultTaskTimeout bounds a single detached task.
const DefaultTaskTimeout = 5 * time.Second

var detachedTaskFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "detached_task_failures_total",
		Help: "Best-effort background tasks that failed, by task",
	},
	[]string{"task"},
)

// DetachedTasks runs best-effort work that must not delay or fail the
// request that triggered it: last-login stamps and event publishing.
type DetachedTasks struct {
	mu      sync.Mutex
	pending int
	idle    chan struct{} // closed when pending drops to zero
	timeout time.Duration
	logger  *slog.Logger
}

// NewDetachedTasks returns a task runner. A non-positive timeout uses
// DefaultTaskTimeout.
func NewDetachedTasks(timeout time.Duration, logger *slog.Logger) *DetachedTasks {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &DetachedTasks{timeout: timeout, logger: logger}
}

// Go runs fn on its own goroutine. fn sees ctx's values but not its
// cancellation, and gets its own timeout. Errors and panics are logged and
// counted, never returned.
func (d *DetachedTasks) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.started()
	go func() {
		defer d.finished()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.fail(taskCtx, name, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := fn(taskCtx); err != nil {
			d.fail(taskCtx, name, err)
		}
	}()
}

// Wait blocks until every started task has finished or ctx is done.
func (d *DetachedTasks) Wait(ctx context.Context) error {
	d.mu.Lock()
	if d.pending == 0 {
		d.mu.Unlock()
		return nil
	}
	idle := d.idle
	d.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for detached tasks: %w", ctx.Err())
	}
}

func (d *DetachedTasks) started() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == 0 {
		d.idle = make(chan struct{})
	}
	d.pending++
}

func (d *DetachedTasks) finished() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending--
	if d.pending == 0 {
		close(d.idle)
	}
}

func (d *DetachedTasks) fail(ctx context.Context, name string, err error) {
	detachedTaskFailures.WithLabelValues(name).Inc()
	logger.WithContext(ctx, d.logger).WarnContext(ctx, "detached task failed",
		slog.String("task", name),
		slog.String("error", err.Error()),
	)
}
