//go:build windows

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/windows"
)

const mutexName = "Global\\CopyqDaemonMutex"

// InstanceLock holds the daemon's named mutex. The pid file is written
// for diagnostics only; the mutex is what enforces single instance.
type InstanceLock struct {
	path   string
	handle windows.Handle
}

func acquireLock(path string) (*InstanceLock, error) {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return nil, fmt.Errorf("failed to build mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, true, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create mutex: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
	}

	return &InstanceLock{path: path, handle: handle}, nil
}

// Release closes the mutex and removes the pid file.
func (l *InstanceLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(l.handle)
	l.handle = 0
	os.Remove(l.path)
	return err
}
