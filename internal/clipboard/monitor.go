package clipboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollingInterval is used when no interval is configured.
const DefaultPollingInterval = 500 * time.Millisecond

// Monitor polls the system clipboard and reports changed text to the
// OnChange callback. The first poll reports whatever the clipboard
// already holds.
type Monitor struct {
	clipboard Clipboard
	interval  time.Duration
	logger    *zap.Logger
	onChange  func(text string)

	mu       sync.Mutex
	lastText string
	seen     bool
	warned   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Clipboard Clipboard
	Interval  time.Duration
	Logger    *zap.Logger
	OnChange  func(text string)
}

// NewMonitor creates a monitor. OnChange must be set by the caller.
func NewMonitor(cfg MonitorConfig) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollingInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		clipboard: cfg.Clipboard,
		interval:  interval,
		logger:    logger,
		onChange:  cfg.OnChange,
	}
}

// Start launches the polling loop. It returns immediately; Stop ends the
// loop and waits for it to finish.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.logger.Info("Starting clipboard monitor",
		zap.Duration("interval", m.interval))

	go m.run(ctx)
}

// Stop ends the polling loop and waits for it to finish.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.logger.Info("Clipboard monitor stopped")
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	text, err := m.clipboard.ReadText()
	if err != nil {
		// Warn once per outage so a missing display does not flood the log.
		if !m.warned {
			m.logger.Warn("Failed to read clipboard", zap.Error(err))
			m.warned = true
		}
		return
	}
	m.warned = false

	m.mu.Lock()
	changed := !m.seen || text != m.lastText
	m.lastText = text
	m.seen = true
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(text)
	}
}
