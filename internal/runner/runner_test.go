package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/ygrebnov/threadpool"
	"github.com/ygrebnov/threadpool/internal/config"
)

func newPool(t *testing.T, size uint) *threadpool.Pool {
	t.Helper()
	p, err := threadpool.New(size, threadpool.WithLogger(discard()))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun_AllJobsSucceed(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	jobs := make([]config.Job, 5)
	for i := range jobs {
		jobs[i] = config.Job{
			Command: "sh",
			Args:    []string{"-c", "touch \"$0\"", filepath.Join(dir, string(rune('a'+i)))},
		}
	}

	sum, err := New(newPool(t, 2), discard()).Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Equal(t, 5, sum.Submitted)
	require.Equal(t, 0, sum.Failed)
	require.NotEmpty(t, sum.RunID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5, "Run must return only after every job finished")
}

func TestRun_CollectsFailures(t *testing.T) {
	requireShell(t)
	jobs := []config.Job{
		{Name: "ok", Command: "sh", Args: []string{"-c", "exit 0"}},
		{Name: "bad", Command: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
		{Name: "missing", Command: "definitely-not-a-real-binary"},
	}

	sum, err := New(newPool(t, 3), discard()).Run(context.Background(), jobs)
	require.Error(t, err)
	require.Equal(t, 3, sum.Submitted)
	require.Equal(t, 2, sum.Failed)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	require.ErrorContains(t, err, "job bad")
	require.ErrorContains(t, err, "oops")
	require.ErrorContains(t, err, "job missing")
}

func TestRun_ClosedPool_ReportsSubmitErrors(t *testing.T) {
	p := newPool(t, 1)
	p.Close()

	sum, err := New(p, discard()).Run(context.Background(), []config.Job{{Command: "true"}})
	require.ErrorIs(t, err, threadpool.ErrPoolClosed)
	require.Equal(t, 0, sum.Submitted)
}

func TestJobName(t *testing.T) {
	require.Equal(t, "build", jobName(0, config.Job{Name: "build", Command: "make"}))
	require.Equal(t, "#2(make)", jobName(2, config.Job{Command: "make"}))
}
