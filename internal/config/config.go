package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ConfigPaths holds the filesystem layout used by the daemon.
type ConfigPaths struct {
	BaseDir    string // base directory for configuration
	ConfigFile string // active config file
	DataDir    string // application data
	DBFile     string // history database
	LogDir     string // log files
	TempDir    string // editor temp files
	RunDir     string // socket, pid file and instance lock
}

// Config holds all daemon settings.
type Config struct {
	// Identity of this installation, generated on first run
	InstanceID string `json:"instance_id" yaml:"instance_id"`

	// System paths configuration
	SystemPaths ConfigPaths `json:"system_paths" yaml:"system_paths"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`

	// History bounds
	History HistoryConfig `json:"history" yaml:"history"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Command server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Item filtering options
	Filter FilterConfig `json:"filter" yaml:"filter"`

	// Action command execution
	Action ActionConfig `json:"action" yaml:"action"`

	// External editor
	Editor EditorConfig `json:"editor" yaml:"editor"`

	// Clipboard polling interval in milliseconds
	PollingInterval int64 `json:"polling_interval" yaml:"polling_interval"`
}

// LogConfig holds logging-related configuration.
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Format            string `json:"format" yaml:"format"` // "json" or "console"
	EnableFileLogging bool   `json:"enable_file_logging" yaml:"enable_file_logging"`
	MaxLogSize        int64  `json:"max_log_size" yaml:"max_log_size"`
	MaxLogFiles       int    `json:"max_log_files" yaml:"max_log_files"`
}

// HistoryConfig bounds the in-memory history.
type HistoryConfig struct {
	// MaxItems trims the oldest items past this count; zero keeps all.
	MaxItems int `json:"max_items" yaml:"max_items"`
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	DBPath  string `json:"db_path" yaml:"db_path"`
	MaxSize int64  `json:"max_size" yaml:"max_size"`
}

// ServerConfig holds configuration for the command server.
type ServerConfig struct {
	// SocketPath overrides the runtime-dir default when set.
	SocketPath string `json:"socket_path" yaml:"socket_path"`
	// ReplyTimeout bounds the reply write to a client, in milliseconds.
	ReplyTimeout int64 `json:"reply_timeout" yaml:"reply_timeout"`
}

// FilterConfig selects how filter patterns match items.
type FilterConfig struct {
	Mode            string `json:"mode" yaml:"mode"` // "words", "regexp" or "fuzzy"
	CaseInsensitive bool   `json:"case_insensitive" yaml:"case_insensitive"`
	SaveHistory     bool   `json:"save_history" yaml:"save_history"`
}

// ActionConfig controls how action commands run.
type ActionConfig struct {
	Shell   string `json:"shell" yaml:"shell"`     // interpreter for action commands
	Timeout int64  `json:"timeout" yaml:"timeout"` // milliseconds; zero waits forever
}

// EditorConfig controls the external editor for edit and new.
type EditorConfig struct {
	// Command template; %1 expands to the temp file path. Empty falls
	// back to $VISUAL or $EDITOR.
	Command string `json:"command" yaml:"command"`
}

// Function variables so tests can redirect filesystem access and identity
// generation.
var (
	getConfigPath      = defaultConfigPath
	getDefaultDataDir  = defaultDataDir
	generateInstanceID = uuid.NewString
)

// GetConfigPaths returns the platform-specific paths and creates the
// directories that do not exist yet.
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir := os.Getenv("COPYQ_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}

		switch runtime.GOOS {
		case "windows":
			baseDir = filepath.Join(configDir, "CopyQ")
		case "darwin":
			baseDir = filepath.Join(configDir, "com.copyq.daemon")
		default:
			baseDir = filepath.Join(configDir, "copyq")
		}
	}

	dataDir, err := getDefaultDataDir()
	if err != nil {
		return nil, err
	}

	paths := &ConfigPaths{
		BaseDir:    baseDir,
		ConfigFile: filepath.Join(baseDir, "config.yaml"),
		DataDir:    dataDir,
		DBFile:     filepath.Join(dataDir, "copyq.db"),
		LogDir:     filepath.Join(dataDir, "logs"),
		TempDir:    filepath.Join(dataDir, "temp"),
		RunDir:     filepath.Join(dataDir, "run"),
	}

	for _, dir := range []string{
		paths.BaseDir,
		paths.DataDir,
		paths.LogDir,
		paths.TempDir,
		paths.RunDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func defaultConfigPath() (string, error) {
	if path := os.Getenv("COPYQ_CONFIG"); path != "" {
		return path, nil
	}

	paths, err := GetConfigPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

func defaultDataDir() (string, error) {
	if dataDir := os.Getenv("COPYQ_DATA_DIR"); dataDir != "" {
		return dataDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "windows":
		appData, err := os.UserConfigDir()
		if err != nil {
			return filepath.Join(homeDir, "AppData", "Local", "CopyQ"), nil
		}
		return filepath.Join(appData, "CopyQ", "Data"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "CopyQ"), nil
	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "copyq"), nil
		}
		return filepath.Join(homeDir, ".copyq"), nil
	}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() (*Config, error) {
	paths, err := GetConfigPaths()
	if err != nil {
		return nil, err
	}

	return &Config{
		InstanceID:  generateInstanceID(),
		SystemPaths: *paths,
		Log: LogConfig{
			Level:             "info",
			Format:            "console",
			EnableFileLogging: true,
			MaxLogSize:        10 * 1024 * 1024,
			MaxLogFiles:       5,
		},
		History: HistoryConfig{
			MaxItems: 200,
		},
		Storage: StorageConfig{
			DBPath:  paths.DBFile,
			MaxSize: 100 * 1024 * 1024,
		},
		Server: ServerConfig{
			ReplyTimeout: 1000,
		},
		Filter: FilterConfig{
			Mode:            "words",
			CaseInsensitive: true,
			SaveHistory:     true,
		},
		Action: ActionConfig{
			Shell:   "sh -c",
			Timeout: 30000,
		},
		PollingInterval: 500,
	}, nil
}

// Load loads the configuration from the given file, creating a default
// one when the file does not exist. An empty path resolves to the active
// config file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg, err := DefaultConfig()
			if err != nil {
				return nil, err
			}
			if err := cfg.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			overrideFromEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// Save writes the configuration to the given file.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// overrideFromEnv overrides configuration values from environment
// variables.
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("COPYQ_DATA_DIR"); val != "" {
		cfg.SystemPaths.DataDir = val
	}
	if val := os.Getenv("COPYQ_SOCKET"); val != "" {
		cfg.Server.SocketPath = val
	}
	if val := os.Getenv("COPYQ_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("COPYQ_EDITOR"); val != "" {
		cfg.Editor.Command = val
	}
	if val := os.Getenv("COPYQ_FILTER_MODE"); val != "" {
		cfg.Filter.Mode = val
	}
	if val := os.Getenv("COPYQ_MAX_ITEMS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.History.MaxItems = n
		}
	}
	if val := os.Getenv("COPYQ_POLLING_INTERVAL"); val != "" {
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.PollingInterval = ms
		}
	}
}
