//go:build e2e

package e2e

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/wasmharness/pkg/browser"
)

func TestMain(m *testing.M) {
	code := m.Run()

	// Safety net for panics or os.Exit during tests, where the
	// runner's deferred browser Close() never ran.
	cleanupOrphanedBrowsers()

	os.Exit(code)
}

// cleanupOrphanedBrowsers kills browsers left behind by failed tests. Only
// processes started with one of our temporary profiles match, so browsers
// the developer has open are left alone. Best effort.
func cleanupOrphanedBrowsers() {
	switch runtime.GOOS {
	case "darwin", "linux":
		// pkill returns non-zero if no processes matched, ignore error
		_ = exec.Command("pkill", "-f", browser.ProfilePrefix).Run()
	}
}

// leftoverBrowsers lists the pids of processes still running with one of
// our profiles.
func leftoverBrowsers() ([]string, error) {
	out, err := exec.Command("pgrep", "-f", browser.ProfilePrefix).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(out)), nil
}

// assertNoBrowserLeft fails if a browser started by the run outlives it.
// Process exit can lag a little behind the CDP disconnect.
func assertNoBrowserLeft(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return
	}
	if _, err := exec.LookPath("pgrep"); err != nil {
		t.Log("pgrep not available, not checking for leftover browsers")
		return
	}

	var (
		mu   sync.Mutex
		left []string
		err  error
	)
	ok := assert.Eventually(t, func() bool {
		pids, pgrepErr := leftoverBrowsers()
		mu.Lock()
		defer mu.Unlock()
		left, err = pids, pgrepErr
		return pgrepErr == nil && len(pids) == 0
	}, 5*time.Second, 100*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NoError(t, err, "pgrep failed")
	require.True(t, ok, "browser processes left running: %v", left)
}
