package threadpool

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/threadpool/queue"
)

// WorkerState is the lifecycle state of a single worker.
type WorkerState int32

const (
	// WorkerRunning means the worker is waiting for the next job.
	WorkerRunning WorkerState = iota
	// WorkerExecuting means the worker is running a job.
	WorkerExecuting
	// WorkerTerminated means the worker has left its loop for good.
	WorkerTerminated
)

func (s WorkerState) String() string {
	switch s {
	case WorkerRunning:
		return "running"
	case WorkerExecuting:
		return "executing"
	case WorkerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerInfo is a point-in-time view of one worker.
type WorkerInfo struct {
	ID    int
	State WorkerState
}

type worker struct {
	id     int
	jobs   *queue.Receiver[Job]
	log    *slog.Logger
	policy FaultPolicy
	in     *instruments

	state atomic.Int32
	// done is closed when the worker goroutine returns.
	done chan struct{}
}

func newWorker(id int, jobs *queue.Receiver[Job], log *slog.Logger, policy FaultPolicy, in *instruments) *worker {
	return &worker{
		id:     id,
		jobs:   jobs,
		log:    log.With("worker", id),
		policy: policy,
		in:     in,
		done:   make(chan struct{}),
	}
}

// start launches the receive-execute loop in its own goroutine.
func (w *worker) start(onExit func()) {
	go func() {
		defer close(w.done)
		defer onExit()
		defer w.jobs.Release()
		defer w.state.Store(int32(WorkerTerminated))
		w.loop()
	}()
}

func (w *worker) loop() {
	for {
		job, ok := w.jobs.Receive()
		if !ok {
			w.log.Info("worker disconnected; shutting down")
			return
		}
		w.in.depth.Add(-1)

		if !w.execute(job) {
			return
		}
	}
}

// execute runs one job and reports whether the worker should keep going.
func (w *worker) execute(job Job) bool {
	w.state.Store(int32(WorkerExecuting))
	defer w.state.Store(int32(WorkerRunning))

	w.log.Debug("worker got a job; executing")
	start := time.Now()
	fault := job.run()
	w.in.observe(start)

	if fault == nil {
		w.in.completed.Add(1)
		return true
	}

	w.in.panicked.Add(1)
	if w.policy == FaultRecover {
		w.log.Error("job panicked; worker continuing",
			"panic", fault.Value, "stack", string(fault.Stack))
		return true
	}
	w.log.Error("job panicked; worker stopping",
		"panic", fault.Value, "stack", string(fault.Stack))
	return false
}

func (w *worker) info() WorkerInfo {
	return WorkerInfo{ID: w.id, State: WorkerState(w.state.Load())}
}

// join blocks until the worker goroutine has returned.
func (w *worker) join() { <-w.done }
