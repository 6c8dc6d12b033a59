// Package lock keeps a single interactive client running per data directory.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/logger"
)

// ErrLocked is returned when another live client holds the lockfile
var ErrLocked = errors.New("another pledge client is already running")

var findProcessFunc = ps.FindProcess

type Lock struct {
	path string
}

// Acquire writes a lockfile into dir. A lockfile left behind by a process
// that is gone, or that is not a pledge client, is treated as stale.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.LockfileName)

	if pid, err := holder(path); err == nil {
		if pid != os.Getpid() {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
	} else if !os.IsNotExist(err) {
		logger.Debug("Replacing stale lockfile", "path", path, "reason", err)
	}

	content := fmt.Sprintf("%d|%s", os.Getpid(), constants.BinaryName)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path}, nil
}

// holder returns the pid of the live client recorded in the lockfile
func holder(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return 0, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return 0, errors.New("invalid process ID in lockfile")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0, fmt.Errorf("process %d not running", pid)
	}
	if !strings.HasPrefix(process.Executable(), parts[1]) {
		return 0, fmt.Errorf("process %d is %s", pid, process.Executable())
	}
	return pid, nil
}

// Release removes the lockfile
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Path returns the lockfile location
func (l *Lock) Path() string {
	return l.path
}
