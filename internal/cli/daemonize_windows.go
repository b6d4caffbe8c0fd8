package cli

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonize re-executes the current binary without a console window.
// The parent prints the child's pid and returns.
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

	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start background process: %w", err)
	}

	fmt.Printf("copyqd started in background (PID: %d)\n", cmd.Process.Pid)
	return nil
}
