package threadpool

import "errors"

const Namespace = "threadpool"

var (
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrNilJob        = errors.New(Namespace + ": cannot submit a nil job")
	ErrPoolClosed    = errors.New(Namespace + ": cannot submit a job to a closed pool")
	// ErrQueueDisconnected means every worker terminated abnormally, so nothing
	// would ever receive a submitted job.
	ErrQueueDisconnected = errors.New(Namespace + ": job queue has no live workers")
	ErrJobPanicked       = errors.New(Namespace + ": job execution panicked")
)
