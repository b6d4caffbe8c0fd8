package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/action"
	"github.com/poa00/copyqd/internal/clipboard"
	"github.com/poa00/copyqd/internal/config"
	"github.com/poa00/copyqd/internal/filter"
	"github.com/poa00/copyqd/internal/history"
	"github.com/poa00/copyqd/internal/server"
	"github.com/poa00/copyqd/internal/storage"
	"github.com/poa00/copyqd/internal/ui"
)

const pidFileName = "copyqd.pid"

// RunDaemon wires up and runs the daemon until a shutdown signal
// arrives or an exit command is dispatched. It owns the instance lock,
// the history store, the clipboard monitor and the command server.
func RunDaemon(cfg *config.Config, logger *zap.Logger) error {
	paths := cfg.SystemPaths

	lock, err := server.AcquireLock(filepath.Join(paths.RunDir, pidFileName))
	if err != nil {
		if errors.Is(err, server.ErrAlreadyRunning) {
			return err
		}
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer lock.Release()

	store, err := storage.NewBoltStorage(storage.StorageConfig{
		DBPath:  cfg.Storage.DBPath,
		MaxSize: cfg.Storage.MaxSize,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	engine, err := filter.NewEngine(filter.EngineConfig{
		Mode:            filter.ParseMode(cfg.Filter.Mode),
		CaseInsensitive: cfg.Filter.CaseInsensitive,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize filter engine: %w", err)
	}

	var patterns *filter.History
	if cfg.Filter.SaveHistory {
		patterns = filter.NewHistory(filepath.Join(paths.BaseDir, "filter_history.yaml"))
		if err := patterns.Load(); err != nil {
			logger.Warn("Failed to load filter history", zap.Error(err))
		}
	}

	clip := clipboard.NewClipboard()

	editor := action.NewEditor(action.EditorConfig{
		Command: cfg.Editor.Command,
		TempDir: paths.TempDir,
		Logger:  logger,
	})

	facade := history.NewFacade(history.FacadeConfig{
		Clipboard: clip,
		Store:     store,
		Engine:    engine,
		Patterns:  patterns,
		Editor:    editor,
		Logger:    logger,
		MaxItems:  cfg.History.MaxItems,
	})
	if err := facade.Restore(); err != nil {
		logger.Warn("Failed to restore history", zap.Error(err))
	}

	runner := action.NewRunner(action.RunnerConfig{
		Shell:   cfg.Action.Shell,
		Timeout: time.Duration(cfg.Action.Timeout) * time.Millisecond,
		Logger:  logger,
	})

	presenter := ui.NewHeadlessPresenter(facade, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := server.NewDispatcher(server.DispatcherConfig{
		History:   facade,
		Presenter: presenter,
		Actions:   runner,
		Quit:      cancel,
		Logger:    logger,
	})

	srv := server.NewServer(server.ServerConfig{
		Dispatcher:   dispatcher,
		SocketPath:   server.SocketPath(cfg.Server.SocketPath),
		ReplyTimeout: time.Duration(cfg.Server.ReplyTimeout) * time.Millisecond,
		Logger:       logger,
	})
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start command server: %w", err)
	}
	defer srv.Close()

	monitor := clipboard.NewMonitor(clipboard.MonitorConfig{
		Clipboard: clip,
		Interval:  time.Duration(cfg.PollingInterval) * time.Millisecond,
		Logger:    logger,
		OnChange:  facade.AddClipboardText,
	})
	monitor.Start(ctx)
	defer monitor.Stop()

	logger.Info("copyqd running",
		zap.String("instance_id", cfg.InstanceID),
		zap.String("db", cfg.Storage.DBPath),
		zap.Int("items", facade.Len()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Info("Shutdown signal received", zap.String("signal", s.String()))
		cancel()
	case <-ctx.Done():
		// exit command
	}

	srv.Close()
	monitor.Stop()

	if err := facade.Save(); err != nil {
		logger.Warn("Failed to save history on shutdown", zap.Error(err))
	}

	logger.Info("copyqd stopped")
	return nil
}
