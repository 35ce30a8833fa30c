package threadpool

import (
	"fmt"
	"runtime/debug"
)

// Job is a unit of work: no arguments, no result. A Job runs exactly once, on
// exactly one worker goroutine. It must not depend on anything whose lifetime
// ends before it runs, and it is responsible for synchronizing any state it
// shares with other jobs.
type Job func()

// JobPanic describes a panic raised by a Job. It wraps ErrJobPanicked.
type JobPanic struct {
	Value any
	Stack []byte
}

func (e *JobPanic) Error() string { return fmt.Sprintf("%s: %v", ErrJobPanicked, e.Value) }
func (e *JobPanic) Unwrap() error { return ErrJobPanicked }

// run executes job and converts a panic into a *JobPanic.
func (job Job) run() (fault *JobPanic) {
	defer func() {
		if r := recover(); r != nil {
			fault = &JobPanic{Value: r, Stack: debug.Stack()}
		}
	}()
	job()
	return nil
}
