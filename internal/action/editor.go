package action

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/poa00/copyqd/pkg/utils"
)

const editorFilePrefix = "copyq_edit"

// ErrNoEditor is returned when no editor command is configured and
// neither VISUAL nor EDITOR is set.
var ErrNoEditor = errors.New("no editor configured")

// Editor opens item text in an external editor through a temporary
// file. The command template may contain %1 as the file name
// placeholder; without one the file name is appended.
type Editor struct {
	command string
	tempDir string
	logger  *zap.Logger
}

// EditorConfig configures an Editor.
type EditorConfig struct {
	// Command is the editor command template, for example "vi %1".
	// When empty the VISUAL and EDITOR environment variables are
	// consulted at edit time.
	Command string
	TempDir string
	Logger  *zap.Logger
}

// NewEditor creates an editor launcher.
func NewEditor(cfg EditorConfig) *Editor {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Editor{
		command: cfg.Command,
		tempDir: tempDir,
		logger:  logger,
	}
}

// Edit writes text to a temporary file, runs the editor on it and
// returns the file content after the editor exits.
func (e *Editor) Edit(ctx context.Context, text string) (string, error) {
	command := e.command
	if command == "" {
		command = fallbackEditor()
	}
	if command == "" {
		return "", ErrNoEditor
	}

	path, file, err := utils.CreateTempFile(e.tempDir, editorFilePrefix, ".txt")
	if err != nil {
		return "", fmt.Errorf("failed to create editor file: %w", err)
	}
	defer utils.RemoveTempFile(path)

	if _, err := file.WriteString(text); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write editor file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write editor file: %w", err)
	}

	args := editorArgs(command, path)
	e.logger.Debug("Opening editor", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(edited), nil
}

// editorArgs splits the command template on whitespace and substitutes
// the temp file path for %1.
func editorArgs(command, path string) []string {
	args := strings.Fields(command)
	substituted := false
	for i, arg := range args {
		if strings.Contains(arg, "%1") {
			args[i] = strings.ReplaceAll(arg, "%1", path)
			substituted = true
		}
	}
	if !substituted {
		args = append(args, path)
	}
	return args
}

func fallbackEditor() string {
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	return os.Getenv("EDITOR")
}
