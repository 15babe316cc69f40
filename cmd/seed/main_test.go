package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/utils"
)

// 子进程中直接运行 main，用来检查退出码
func TestMain(m *testing.M) {
	if os.Getenv("SEED_RUN_MAIN") == "1" {
		os.Args = append([]string{"seed"}, strings.Fields(os.Getenv("SEED_ARGS"))...)
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runMain(t *testing.T, args ...string) int {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), "SEED_RUN_MAIN=1", "SEED_ARGS="+strings.Join(args, " "))
	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	require.NoError(t, err)
	return 0
}

func TestMain_InvalidOpExitsWithError(t *testing.T) {
	assert.Equal(t, 1, runMain(t))
	assert.Equal(t, 1, runMain(t, "-op", "9"))
	assert.Equal(t, 1, runMain(t, "-op", "2"))
}

func TestMain_GeneratesRandomSnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.json")
	require.Equal(t, 0, runMain(t, "-op", "1", "-workshops", "12", "-users", "20", "-registrations", "40", "-seed", "7", "-out", out))

	s, err := utils.ReadSnapshotFile(out)
	require.NoError(t, err)
	assert.Len(t, s.Workshops, 12)
	assert.Len(t, s.Users, 20)
}
