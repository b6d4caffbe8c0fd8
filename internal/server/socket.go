package server

import (
	"os"
	"path/filepath"
)

const socketFileName = "copyq.sock"

// SocketPath resolves the control socket location shared by the daemon
// and the client: $COPYQ_SOCKET wins, then the configured path, then
// XDG_RUNTIME_DIR, then the system temp directory.
func SocketPath(configured string) string {
	if path := os.Getenv("COPYQ_SOCKET"); path != "" {
		return path
	}
	if configured != "" {
		return configured
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketFileName)
	}
	return filepath.Join(os.TempDir(), socketFileName)
}
