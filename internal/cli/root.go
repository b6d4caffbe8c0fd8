// Package cli implements the copyq command-line interface. Running the
// root command starts the daemon in the foreground; every protocol
// subcommand is forwarded to the already running instance, which prints
// its reply and decides the exit code.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/config"
	"github.com/poa00/copyqd/internal/logging"
)

var (
	// Flags that apply to all commands
	cfgFile   string
	logLevel  string
	noFileLog bool

	// Flags for daemon mode (the default command)
	detach bool

	// The loaded configuration
	cfg *config.Config

	// Logger instance
	logger *zap.Logger

	// Version information - set by main
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "copyq",
	Short: "Clipboard history manager",
	Long: `copyq monitors the system clipboard and keeps a browsable history
of copied items.

Running copyq without a command starts the daemon in the foreground.
Use --detach to run it in the background. Any other command is sent to
the running instance, whose reply is printed before exiting with the
code it returned.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if detach {
			return daemonize()
		}

		if cfg.Log.EnableFileLogging && !noFileLog {
			fileLogger, err := logging.New(logging.Options{
				Level:  cfg.Log.Level,
				File:   filepath.Join(cfg.SystemPaths.LogDir, "copyqd.log"),
				Format: cfg.Log.Format,
			})
			if err != nil {
				return fmt.Errorf("failed to set up file logging: %w", err)
			}
			logger = fileLogger
		}

		return RunDaemon(cfg, logger)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger, err = logging.New(logging.Options{
			Level:  cfg.Log.Level,
			Format: "console",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information used by the version command
func SetVersionInfo(version, buildTime, commit string) {
	Version = version
	BuildTime = buildTime
	Commit = commit
}

func init() {
	// Global flags for all commands
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().BoolVar(&noFileLog, "no-file-log", false, "disable logging to file")

	// Flags for daemon mode
	RootCmd.Flags().BoolVar(&detach, "detach", false, "detach from terminal and run in background")

	RootCmd.AddCommand(
		newToggleCmd(),
		newExitCmd(),
		newMenuCmd(),
		newActionCmd(),
		newAddCmd(),
		newEditCmd(),
		newNewCmd(),
		newSelectCmd(),
		newRemoveCmd(),
		newCountCmd(),
		newListCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}
