// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ptysession

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/creack/pty"

	"github.com/bureau-foundation/ptywrap/lib/process"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openSession allocates a session or skips the test where the
// environment provides no PTY devices.
func openSession(t *testing.T) *Session {
	t.Helper()
	session, err := Open(quietLogger())
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestOpenAndClose(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	if session.Master() == nil {
		t.Fatal("Master: got nil")
	}
	if err := session.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	// Second close is a no-op, not a double close of the descriptors.
	if err := session.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestSpawnChildOncePerSession(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	if err := session.SpawnChild("sh", []string{"-c", "exit 0"}); err != nil {
		t.Fatalf("SpawnChild: %v", err)
	}
	if err := session.SpawnChild("sh", []string{"-c", "exit 0"}); err == nil {
		t.Error("second SpawnChild: got nil error, want rejection")
	}
	session.Wait()
}

func TestChildExitStatusPropagates(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	if err := session.SpawnChild("sh", []string{"-c", "exit 7"}); err != nil {
		t.Fatalf("SpawnChild: %v", err)
	}
	if got := process.ExitCode(session.Wait()); got != 7 {
		t.Errorf("exit code: got %d, want 7", got)
	}
}

func TestChildOutputArrivesOnMaster(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	if err := session.SpawnChild("sh", []string{"-c", "printf marker-output"}); err != nil {
		t.Fatalf("SpawnChild: %v", err)
	}

	var output strings.Builder
	buffer := make([]byte, 1024)
	for {
		n, err := session.Master().Read(buffer)
		output.Write(buffer[:n])
		if err != nil {
			// EIO on Linux when the last slave handle is gone —
			// the PTY's end-of-stream.
			break
		}
	}
	session.Wait()

	if !strings.Contains(output.String(), "marker-output") {
		t.Errorf("master output: got %q, want it to contain %q", output.String(), "marker-output")
	}
}

func TestResizeAppliesGeometry(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	want := Geometry{Rows: 40, Cols: 120}
	if err := session.Resize(want); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	size, err := pty.GetsizeFull(session.Master())
	if err != nil {
		t.Fatalf("querying size: %v", err)
	}
	if size.Rows != want.Rows || size.Cols != want.Cols {
		t.Errorf("geometry: got %dx%d, want %dx%d", size.Rows, size.Cols, want.Rows, want.Cols)
	}
}

func TestNonInteractiveGeometryDefaults(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	if session.Interactive() {
		t.Skip("test requires a non-terminal stdin")
	}
	if got := session.CurrentGeometry(); got != DefaultGeometry {
		t.Errorf("geometry: got %+v, want %+v", got, DefaultGeometry)
	}
	// Raw mode is a no-op without a terminal; nothing to restore.
	if err := session.EnterRawMode(); err != nil {
		t.Errorf("EnterRawMode: %v", err)
	}
}

func TestCloseRestoresTerminalModeExactlyOnce(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	restoreCalls := 0
	session.restoreTerminal = func() error {
		restoreCalls++
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := session.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if restoreCalls != 1 {
		t.Errorf("restore calls: got %d, want exactly 1", restoreCalls)
	}
}

func TestCloseReportsRestoreFailureOnce(t *testing.T) {
	t.Parallel()
	session := openSession(t)

	restoreErr := errors.New("restore failed")
	session.restoreTerminal = func() error { return restoreErr }

	first := session.Close()
	if first == nil || !strings.Contains(first.Error(), "restore failed") {
		t.Errorf("Close: got %v, want the restore failure", first)
	}
	// Later calls repeat the first result without re-running cleanup.
	if second := session.Close(); !errors.Is(second, first) {
		t.Errorf("second Close: got %v, want the first result", second)
	}
}
