// copyqd is the headless daemon entry point for service managers. It
// skips the CLI layer entirely: config and logging come from the
// platform defaults and the environment.
package main

import (
	"log"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/cli"
	"github.com/poa00/copyqd/internal/config"
	"github.com/poa00/copyqd/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}
	if cfg.Log.EnableFileLogging {
		opts.File = filepath.Join(cfg.SystemPaths.LogDir, "copyqd.log")
	}

	logger, err := logging.New(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := cli.RunDaemon(cfg, logger); err != nil {
		logger.Fatal("Daemon failed", zap.Error(err))
	}
}
