package threadpool

import (
	"time"

	"github.com/ygrebnov/threadpool/metrics"
)

// instruments bundles everything a pool records.
type instruments struct {
	submitted metrics.Counter
	completed metrics.Counter
	panicked  metrics.Counter
	live      metrics.UpDownCounter
	depth     metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider, pool string) *instruments {
	attrs := metrics.WithAttributes(map[string]string{"pool": pool})
	return &instruments{
		submitted: p.Counter(Namespace+"_jobs_submitted_total", attrs,
			metrics.WithDescription("Jobs accepted by Submit.")),
		completed: p.Counter(Namespace+"_jobs_completed_total", attrs,
			metrics.WithDescription("Jobs that returned normally.")),
		panicked: p.Counter(Namespace+"_jobs_panicked_total", attrs,
			metrics.WithDescription("Jobs that panicked.")),
		live: p.UpDownCounter(Namespace+"_workers_live", attrs,
			metrics.WithDescription("Workers that have not terminated.")),
		depth: p.UpDownCounter(Namespace+"_queue_depth", attrs,
			metrics.WithDescription("Jobs waiting for a worker.")),
		duration: p.Histogram(Namespace+"_job_duration_seconds", attrs,
			metrics.WithUnit("seconds"),
			metrics.WithDescription("Job execution time.")),
	}
}

func (in *instruments) observe(start time.Time) {
	in.duration.Record(time.Since(start).Seconds())
}
