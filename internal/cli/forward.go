package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/server"
)

// newForwardCmd builds a subcommand that sends its name and raw
// arguments to the running instance. Flag parsing is disabled so the
// arguments reach the server untouched.
func newForwardCmd(name, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forward(append([]string{name}, args...))
		},
	}
}

// forward delivers one command to the running instance, prints the
// reply text and exits with the reply's code when it is non-zero.
func forward(args []string) error {
	socketPath := server.SocketPath(cfg.Server.SocketPath)

	reply, err := server.Send(socketPath, args, server.DefaultClientTimeout)
	if err != nil {
		logger.Debug("Failed to reach server",
			zap.String("socket", socketPath),
			zap.Error(err))
		fmt.Fprintln(os.Stderr, "Cannot connect to server!")
		os.Exit(1)
	}

	fmt.Print(reply.Text)
	if reply.ExitCode != 0 {
		os.Exit(reply.ExitCode)
	}
	return nil
}
