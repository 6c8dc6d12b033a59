package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/stackspledge/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubProcesses(t *testing.T, fn func(pid int) (ps.Process, error)) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = fn
	t.Cleanup(func() { findProcessFunc = old })
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(l.Path()); err != nil {
		t.Fatalf("lockfile missing: %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Error("lockfile should be removed after Release()")
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestAcquire_HeldByLiveClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.LockfileName)
	if err := os.WriteFile(path, []byte("424242|pledge"), 0600); err != nil {
		t.Fatal(err)
	}
	stubProcesses(t, func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "pledge"}, nil
	})

	if _, err := Acquire(dir); !errors.Is(err, ErrLocked) {
		t.Errorf("Acquire() error = %v, want %v", err, ErrLocked)
	}
}

func TestAcquire_StaleLockfiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		process ps.Process
	}{
		{name: "process gone", content: "424242|pledge", process: nil},
		{name: "pid reused by other program", content: "424242|pledge", process: &mockProcess{pid: 424242, executable: "bash"}},
		{name: "malformed", content: "garbage", process: nil},
		{name: "bad pid", content: "abc|pledge", process: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, constants.LockfileName)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			stubProcesses(t, func(pid int) (ps.Process, error) {
				return tt.process, nil
			})

			l, err := Acquire(dir)
			if err != nil {
				t.Fatalf("Acquire() error = %v, want stale lock replaced", err)
			}
			defer l.Release()
		})
	}
}
