package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireTrue(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
}

func TestRunCmd_Succeeds(t *testing.T) {
	requireTrue(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--config", filepath.Join("testdata", "jobs.yaml"), "--workers", "3"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_ReportsFailedJobs(t *testing.T) {
	requireTrue(t)

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: error
jobs:
  - name: broken
    command: "false"
`), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "-c", path})
	require.ErrorContains(t, cmd.Execute(), "job broken")
}

func TestRunCmd_RejectsZeroWorkersOverride(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "-c", filepath.Join("testdata", "jobs.yaml"), "-w", "0"})
	require.ErrorContains(t, cmd.Execute(), "pool.workers must be greater than zero")
}
