package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/poa00/copyqd/internal/protocol"
)

// DefaultClientTimeout bounds a secondary invocation's whole exchange
// with the running instance.
const DefaultClientTimeout = 5 * time.Second

// Send delivers one command argument list to the running instance and
// returns its reply. The connection failure is the caller's signal
// that no instance is running.
func Send(socketPath string, args []string, timeout time.Duration) (protocol.Reply, error) {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}

	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return protocol.Reply{}, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(protocol.Encode(args) + "\n")); err != nil {
		return protocol.Reply{}, fmt.Errorf("failed to send command: %w", err)
	}

	raw, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && raw == "" {
		return protocol.Reply{}, fmt.Errorf("failed to read reply: %w", err)
	}

	return protocol.DecodeReply(strings.TrimSuffix(raw, "\n")), nil
}

// IsRunning reports whether a server is accepting on the socket. It
// dials and closes without exchanging data.
func IsRunning(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
