package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultHistoryLimit = 50

// History remembers recently used filter patterns, most recent first.
// Patterns are persisted to a YAML file so they survive restarts.
type History struct {
	mu       sync.Mutex
	path     string
	limit    int
	patterns []string
}

type historyFile struct {
	Patterns []string `yaml:"patterns"`
}

// NewHistory creates a pattern history backed by the given file.
func NewHistory(path string) *History {
	return &History{
		path:  path,
		limit: defaultHistoryLimit,
	}
}

// Load reads previously saved patterns. A missing file is not an
// error, it simply leaves the history empty.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read filter history: %w", err)
	}

	var file historyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse filter history: %w", err)
	}

	h.patterns = dedup(file.Patterns, h.limit)
	return nil
}

// Add records a pattern as the most recent one. Duplicates are moved
// to the front instead of being stored twice. Empty patterns are
// ignored.
func (h *History) Add(pattern string) {
	if pattern == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.patterns = dedup(append([]string{pattern}, h.patterns...), h.limit)
}

// Patterns returns the stored patterns, most recent first.
func (h *History) Patterns() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.patterns))
	copy(out, h.patterns)
	return out
}

// Save writes the patterns to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := yaml.Marshal(historyFile{Patterns: h.patterns})
	if err != nil {
		return fmt.Errorf("failed to marshal filter history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create filter history directory: %w", err)
	}

	if err := os.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write filter history: %w", err)
	}
	return nil
}

// dedup keeps the first occurrence of each pattern and caps the result
// at limit entries.
func dedup(patterns []string, limit int) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
