package threadpool

import (
	"log/slog"
	"sync"
)

// lifecycleCoordinator encapsulates the teardown sequence of a Pool.
// It owns no channels; it orchestrates queue closure and worker joins in a
// deterministic order.
//
// Close is safe for concurrent calls; the sequence executes exactly once and
// every caller returns only after it has completed.
type lifecycleCoordinator struct {
	closeQueue func()
	workers    []*worker
	afterJoin  func()
	log        *slog.Logger

	once sync.Once
}

func newLifecycleCoordinator(closeQueue func(), workers []*worker, afterJoin func(), log *slog.Logger) *lifecycleCoordinator {
	return &lifecycleCoordinator{closeQueue: closeQueue, workers: workers, afterJoin: afterJoin, log: log}
}

// Close executes the teardown sequence exactly once:
// 1) close the job queue; workers keep draining what is already buffered
// 2) join every worker in id order
// 3) run afterJoin, once no worker can receive anymore
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.closeQueue != nil {
			lc.closeQueue()
		}
		for _, w := range lc.workers {
			lc.log.Info("shutting down worker", "worker", w.id)
			w.join()
		}
		if lc.afterJoin != nil {
			lc.afterJoin()
		}
	})
}
