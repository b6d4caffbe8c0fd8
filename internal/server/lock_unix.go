//go:build !windows

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// InstanceLock is an exclusive flock on the daemon's pid file. The
// lock dies with the process, so a crashed daemon never leaves a stale
// lock behind.
type InstanceLock struct {
	path string
	file *os.File
}

func acquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		pid := lockedPid(file)
		file.Close()
		if err == unix.EWOULDBLOCK {
			if pid > 0 {
				return nil, fmt.Errorf("%w with pid %d", ErrAlreadyRunning, pid)
			}
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	if err := writePid(file); err != nil {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
		return nil, err
	}

	return &InstanceLock{path: path, file: file}, nil
}

// Release drops the lock and removes the pid file.
func (l *InstanceLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	os.Remove(l.path)
	return err
}

// lockedPid reads the pid the lock holder wrote, 0 when unreadable.
func lockedPid(file *os.File) int {
	buf := make([]byte, 32)
	n, err := file.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}
