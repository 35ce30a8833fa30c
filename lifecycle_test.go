package threadpool

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/threadpool/metrics"
	"github.com/ygrebnov/threadpool/queue"
)

// helper to read a string from a channel with timeout
func recvStep(t *testing.T, ch <-chan string, d time.Duration) (string, bool) {
	t.Helper()
	select {
	case s := <-ch:
		return s, true
	case <-time.After(d):
		return "", false
	}
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLifecycle_ClosesQueueThenJoinsInIDOrder(t *testing.T) {
	steps := make(chan string, 10)

	// fake workers: each exits only when the test closes its done channel
	workers := make([]*worker, 3)
	for i := range workers {
		workers[i] = &worker{id: i, done: make(chan struct{})}
	}

	lc := newLifecycleCoordinator(
		func() { steps <- "closeQueue" },
		workers,
		func() { steps <- "afterJoin" },
		discardLogger(),
	)

	finished := make(chan struct{})
	go func() { lc.Close(); close(finished) }()

	s, ok := recvStep(t, steps, time.Second)
	require.True(t, ok, "closeQueue was not called")
	require.Equal(t, "closeQueue", s)

	// release workers in reverse order; Close must still wait for all of them
	close(workers[2].done)
	close(workers[1].done)
	select {
	case <-finished:
		t.Fatalf("Close returned before worker 0 was joined")
	case <-time.After(50 * time.Millisecond):
	}

	_, early := recvStep(t, steps, 20*time.Millisecond)
	require.False(t, early, "afterJoin ran before every worker was joined")

	close(workers[0].done)
	s, ok = recvStep(t, steps, time.Second)
	require.True(t, ok, "afterJoin was not called")
	require.Equal(t, "afterJoin", s)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("Close did not return after every worker exited")
	}
}

func TestLifecycle_CloseRunsOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	lc := newLifecycleCoordinator(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}, nil, nil, discardLogger())

	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func() { defer wg.Done(); lc.Close() }()
	}
	wg.Wait()
	lc.Close()

	require.Equal(t, 1, calls)
}

func TestWorker_StateTransitions(t *testing.T) {
	tx, rx := queue.New[Job]()
	in := newInstruments(metrics.NewNoopProvider(), "test")
	w := newWorker(0, rx, discardLogger(), FaultStopsWorker, in)

	exited := make(chan struct{})
	w.start(func() { close(exited) })

	require.Equal(t, WorkerRunning, w.info().State)

	inJob := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, tx.Send(func() { close(inJob); <-release }))
	<-inJob
	require.Equal(t, WorkerExecuting, w.info().State)

	close(release)
	require.Eventually(t, func() bool { return w.info().State == WorkerRunning }, time.Second, time.Millisecond)

	tx.Close()
	w.join()
	<-exited
	require.Equal(t, WorkerTerminated, w.info().State)
	require.ErrorIs(t, tx.Send(func() {}), queue.ErrClosed)
}

func TestWorker_ReleasesReceiverOnExit(t *testing.T) {
	tx, rx := queue.New[Job]()
	in := newInstruments(metrics.NewNoopProvider(), "test")
	w := newWorker(0, rx, discardLogger(), FaultStopsWorker, in)
	w.start(func() {})

	require.NoError(t, tx.Send(func() { panic("boom") }))
	w.join()

	require.Equal(t, WorkerTerminated, w.info().State)
	require.ErrorIs(t, tx.Send(func() {}), queue.ErrDisconnected)
}

func TestJob_RunConvertsPanic(t *testing.T) {
	require.Nil(t, Job(func() {}).run())

	fault := Job(func() { panic("boom") }).run()
	require.NotNil(t, fault)
	require.Equal(t, "boom", fault.Value)
	require.NotEmpty(t, fault.Stack)
	require.ErrorIs(t, fault, ErrJobPanicked)
	require.Equal(t, "threadpool: job execution panicked: boom", fault.Error())
}

func TestWorkerState_String(t *testing.T) {
	require.Equal(t, "running", WorkerRunning.String())
	require.Equal(t, "executing", WorkerExecuting.String())
	require.Equal(t, "terminated", WorkerTerminated.String())
	require.Equal(t, "unknown", WorkerState(9).String())
}
