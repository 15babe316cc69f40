package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 子进程中直接运行 main，用来检查退出码
func TestMain(m *testing.M) {
	if os.Getenv("SNAPSHOT_RUN_MAIN") == "1" {
		os.Args = append([]string{"snapshot"}, strings.Fields(os.Getenv("SNAPSHOT_ARGS"))...)
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runMain(t *testing.T, args ...string) int {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), "SNAPSHOT_RUN_MAIN=1", "SNAPSHOT_ARGS="+strings.Join(args, " "), "DATABASE_DSN=")
	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	require.NoError(t, err)
	return 0
}

func TestCheckOp(t *testing.T) {
	for _, op := range []string{"export", "import", "latest"} {
		assert.NoError(t, checkOp(op))
	}
	assert.Error(t, checkOp(""))
	assert.Error(t, checkOp("drop"))
}

func TestMain_UnknownOpExitsWithError(t *testing.T) {
	assert.Equal(t, 1, runMain(t, "-op", "drop"))
	assert.Equal(t, 1, runMain(t))
}

func TestMain_MissingDSNExitsWithError(t *testing.T) {
	assert.Equal(t, 1, runMain(t, "-op", "export"))
}
