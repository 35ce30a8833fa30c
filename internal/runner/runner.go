// Package runner executes configured shell commands on a threadpool.Pool.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ygrebnov/threadpool"
	"github.com/ygrebnov/threadpool/internal/config"
)

// Summary reports the outcome of one Run.
type Summary struct {
	RunID     string
	Submitted int
	Failed    int
	Elapsed   time.Duration
}

// Runner turns config jobs into pool jobs. Command failures are collected by
// the jobs themselves since the pool has no result channel.
type Runner struct {
	pool *threadpool.Pool
	log  *slog.Logger

	mu     sync.Mutex
	errs   error
	failed int
}

func New(pool *threadpool.Pool, log *slog.Logger) *Runner {
	return &Runner{pool: pool, log: log}
}

// Run submits every job, tears the pool down and returns the combined command errors.
// ctx bounds each command's process lifetime; the pool itself is never cancelled.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	log := r.log.With("run", sum.RunID)
	start := time.Now()

	var submitErr error
	for i, j := range jobs {
		name := jobName(i, j)
		if err := r.pool.Submit(r.job(ctx, log, name, j)); err != nil {
			submitErr = multierr.Append(submitErr, fmt.Errorf("submit %s: %w", name, err))
			continue
		}
		sum.Submitted++
	}
	log.Info("jobs submitted", "count", sum.Submitted)

	r.pool.Close()
	sum.Elapsed = time.Since(start)

	r.mu.Lock()
	sum.Failed = r.failed
	err := multierr.Combine(submitErr, r.errs)
	r.mu.Unlock()

	log.Info("run finished", "submitted", sum.Submitted, "failed", sum.Failed, "elapsed", sum.Elapsed)
	return sum, err
}

func (r *Runner) job(ctx context.Context, log *slog.Logger, name string, j config.Job) threadpool.Job {
	return func() {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, j.Command, j.Args...)
		cmd.Dir = j.Dir
		cmd.Stderr = &stderr

		started := time.Now()
		err := cmd.Run()
		attrs := []any{"job", name, "elapsed", time.Since(started)}
		if err == nil {
			log.Info("job succeeded", attrs...)
			return
		}

		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		log.Error("job failed", append(attrs, "error", err)...)
		r.fail(fmt.Errorf("job %s: %w", name, err))
	}
}

func (r *Runner) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	r.errs = multierr.Append(r.errs, err)
}

func jobName(i int, j config.Job) string {
	if j.Name != "" {
		return j.Name
	}
	return fmt.Sprintf("#%d(%s)", i, j.Command)
}
