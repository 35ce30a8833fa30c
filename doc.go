// Package threadpool runs fire-and-forget jobs on a fixed number of worker
// goroutines fed by one shared, unbounded FIFO queue.
//
// Lifecycle
//   - New(size, opts...): starts exactly size workers. size == 0 fails with
//     ErrInvalidConfig and starts nothing.
//   - Submit(job): enqueues and returns immediately. Jobs submitted by one
//     goroutine are handed to workers in submission order; each job runs once.
//   - Close(): closes the queue, lets the workers drain every job already
//     enqueued, then joins them in id order. Close is the only way to stop a
//     pool; there is no per-job cancellation.
//
// Faults
// A panicking job never crashes the process. With the default
// FaultStopsWorker policy the worker that ran it logs the panic and exits, so
// capacity shrinks by one and is not restored. WithFaultPolicy(FaultRecover)
// keeps the worker running instead.
//
// Diagnostics
// Workers log through log/slog ("worker got a job; executing" at debug level,
// "worker disconnected; shutting down" at info level) and Close logs
// "shutting down worker" before each join. Instruments are recorded into the
// metrics.Provider given by WithMetrics.
package threadpool
