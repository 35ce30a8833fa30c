package threadpool

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/threadpool/queue"
)

// Pool runs submitted jobs on a fixed set of worker goroutines.
// Methods are safe for concurrent use. A Pool must be created with New and
// torn down with Close.
type Pool struct {
	config *config

	// mu guards jobs. Submit holds it for reading across the send, Close holds
	// it for writing while discarding the sender.
	mu   sync.RWMutex
	jobs *queue.Sender[Job]
	// closed is the discarded sender, kept to account for jobs stranded at teardown.
	closed *queue.Sender[Job]

	workers []*worker
	live    atomic.Int64

	in        *instruments
	lifecycle *lifecycleCoordinator
}

// New creates a pool of size workers and starts them.
// It returns an error wrapping ErrInvalidConfig if size is zero or an option is invalid;
// in that case no goroutine is started.
func New(size uint, opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	cfg.Size = size
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	p := &Pool{}
	p.initialize(&cfg)
	return p, nil
}

// initialize creates the queue and spawns the workers.
func (p *Pool) initialize(cfg *config) {
	log := cfg.Logger.With("pool", cfg.Name)
	in := newInstruments(cfg.Metrics, cfg.Name)

	tx, rx := queue.New[Job]()
	workers := make([]*worker, cfg.Size)
	for id := range workers {
		workers[id] = newWorker(id, rx.Clone(), log, cfg.FaultPolicy, in)
	}
	// only the workers' clones keep the queue connected
	rx.Release()

	p.config = cfg
	p.jobs = tx
	p.workers = workers
	p.in = in
	p.lifecycle = newLifecycleCoordinator(p.closeQueue, workers, p.dropStranded, log)

	p.live.Store(int64(len(workers)))
	in.live.Add(int64(len(workers)))
	for _, w := range workers {
		w.start(p.workerExited)
	}

	log.Debug("pool started", "workers", len(workers), "fault_policy", cfg.FaultPolicy.String())
}

func (p *Pool) workerExited() {
	p.live.Add(-1)
	p.in.live.Add(-1)
}

// closeQueue discards the sender. Called once, by the lifecycle coordinator.
func (p *Pool) closeQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobs != nil {
		p.jobs.Close()
		p.closed = p.jobs
		p.jobs = nil
	}
}

// dropStranded runs after every worker has exited. Workers drain a closed queue
// completely, so anything still buffered was left behind by workers lost to
// panicking jobs and will never run.
func (p *Pool) dropStranded() {
	if p.closed == nil {
		return
	}
	if n := p.closed.Len(); n > 0 {
		p.in.depth.Add(-int64(n))
		p.lifecycle.log.Warn("dropping jobs left without a live worker", "jobs", n)
	}
}

// Submit enqueues job for execution by some worker and returns immediately.
// The caller is never told when, or whether successfully, the job ran.
//
// Submit never blocks on queue depth. It returns ErrNilJob for a nil job,
// ErrPoolClosed once Close has started and ErrQueueDisconnected when every
// worker has terminated after a panicking job.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.jobs == nil {
		return ErrPoolClosed
	}

	p.in.depth.Add(1)
	if err := p.jobs.Send(job); err != nil {
		p.in.depth.Add(-1)
		if errors.Is(err, queue.ErrDisconnected) {
			return errorc.With(ErrQueueDisconnected, errorc.String("workers", strconv.Itoa(len(p.workers))))
		}
		return ErrPoolClosed
	}
	p.in.submitted.Add(1)
	return nil
}

// Close closes the job queue and waits, in worker id order, for every worker
// to finish the jobs already enqueued and exit.
//
// Close is idempotent and safe for concurrent use; every call returns only
// once teardown has completed. Typical use is `defer p.Close()` right after New.
// Calling Close from inside a job deadlocks: the worker would wait for itself.
func (p *Pool) Close() {
	p.lifecycle.Close()
}

// Size returns the number of workers the pool was created with.
func (p *Pool) Size() int { return len(p.workers) }

// Live returns the number of workers that have not terminated.
func (p *Pool) Live() int { return int(p.live.Load()) }

// Pending returns the number of jobs waiting for a worker. It reports zero
// once Close has begun.
func (p *Pool) Pending() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.jobs == nil {
		return 0
	}
	return p.jobs.Len()
}

// Workers returns a snapshot of every worker's state, ordered by id.
func (p *Pool) Workers() []WorkerInfo {
	out := make([]WorkerInfo, len(p.workers))
	for i, w := range p.workers {
		out[i] = w.info()
	}
	return out
}
