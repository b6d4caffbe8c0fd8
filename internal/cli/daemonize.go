//go:build !windows

package cli

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonize re-executes the current binary detached from the terminal.
// The parent prints the child's pid and returns; the child runs the
// daemon with the --detach flag stripped.
func daemonize() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := make([]string, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		if arg == "--detach" {
			continue
		}
		args = append(args, arg)
	}

	nullDev, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer nullDev.Close()

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nullDev
	cmd.Stdout = nullDev
	cmd.Stderr = nullDev
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start background process: %w", err)
	}

	fmt.Printf("copyqd started in background (PID: %d)\n", cmd.Process.Pid)
	return nil
}
