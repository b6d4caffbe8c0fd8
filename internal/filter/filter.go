// Package filter matches clipboard history items against search patterns.
//
// Three modes are supported. Word matching splits the pattern on
// whitespace and requires the words to appear in order. Regular
// expression matching uses the raw pattern. Fuzzy matching ranks items
// by similarity and keeps every item with a positive match.
package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sahilm/fuzzy"
)

// Mode selects how patterns are interpreted.
type Mode string

const (
	// ModeWords matches whitespace separated words in order.
	ModeWords Mode = "words"
	// ModeRegexp treats the pattern as a regular expression.
	ModeRegexp Mode = "regexp"
	// ModeFuzzy ranks items with fuzzy matching.
	ModeFuzzy Mode = "fuzzy"
)

// ParseMode maps a configuration string to a Mode. Unrecognized values
// fall back to ModeWords.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeRegexp:
		return ModeRegexp
	case ModeFuzzy:
		return ModeFuzzy
	default:
		return ModeWords
	}
}

const defaultCacheSize = 64

// Engine compiles search patterns and reports which history rows they
// match. Compiled patterns are kept in an LRU cache so retyping a
// recent filter does not recompile it.
type Engine struct {
	mode            Mode
	caseInsensitive bool
	cache           *lru.Cache[string, *matcher]
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Mode            Mode
	CaseInsensitive bool
	CacheSize       int
}

// NewEngine creates a filter engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	cache, err := lru.New[string, *matcher](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher cache: %w", err)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeWords
	}

	return &Engine{
		mode:            mode,
		caseInsensitive: cfg.CaseInsensitive,
		cache:           cache,
	}, nil
}

// Mode returns the engine's matching mode.
func (e *Engine) Mode() Mode { return e.mode }

// VisibleRows returns the indexes of texts matching pattern, in
// ascending order. An empty pattern matches every row. An invalid
// regular expression matches no rows at all.
func (e *Engine) VisibleRows(pattern string, texts []string) []int {
	if pattern == "" {
		rows := make([]int, len(texts))
		for i := range texts {
			rows[i] = i
		}
		return rows
	}

	if e.mode == ModeFuzzy {
		matches := fuzzy.Find(pattern, texts)
		rows := make([]int, 0, len(matches))
		for _, match := range matches {
			rows = append(rows, match.Index)
		}
		sort.Ints(rows)
		return rows
	}

	m := e.compile(pattern)
	if m.invalid {
		return nil
	}

	var rows []int
	for i, text := range texts {
		if m.re.MatchString(text) {
			rows = append(rows, i)
		}
	}
	return rows
}

// Matches reports whether a single text matches pattern.
func (e *Engine) Matches(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	if e.mode == ModeFuzzy {
		return len(fuzzy.Find(pattern, []string{text})) > 0
	}
	m := e.compile(pattern)
	return !m.invalid && m.re.MatchString(text)
}

// matcher is a compiled pattern. A pattern that failed to compile is
// marked invalid and matches nothing.
type matcher struct {
	re      *regexp.Regexp
	invalid bool
}

func (e *Engine) compile(pattern string) *matcher {
	if m, ok := e.cache.Get(pattern); ok {
		return m
	}

	expr := pattern
	if e.mode == ModeWords {
		expr = wordsPattern(pattern)
	}
	if e.caseInsensitive {
		expr = "(?i)" + expr
	}

	m := &matcher{}
	re, err := regexp.Compile(expr)
	if err != nil {
		m.invalid = true
	} else {
		m.re = re
	}

	e.cache.Add(pattern, m)
	return m
}

// wordsPattern escapes each whitespace separated word of pattern and
// joins them so that the words must appear in the given order.
func wordsPattern(pattern string) string {
	var b strings.Builder
	for _, word := range strings.Fields(pattern) {
		if b.Len() > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(word))
	}
	return b.String()
}
