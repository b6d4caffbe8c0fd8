package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrAlreadyRunning is returned when another daemon instance holds the
// single-instance lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// AcquireLock takes the single-instance lock, recording this process's
// pid in the lock file. A second daemon fails fast instead of stealing
// the running instance's socket.
func AcquireLock(path string) (*InstanceLock, error) {
	return acquireLock(path)
}

func writePid(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	if _, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}
