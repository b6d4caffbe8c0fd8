package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultReplyTimeout bounds the reply write to the invoking
	// process. A reply that cannot be delivered in time is dropped;
	// the command's effect stands either way.
	DefaultReplyTimeout = 1000 * time.Millisecond

	// readTimeout bounds how long a connected client may take to send
	// its command line.
	readTimeout = 5 * time.Second
)

// Server accepts connections from secondary invocations on the Unix
// socket and feeds each received message through the dispatcher. One
// message is exchanged per connection.
type Server struct {
	dispatcher   *Dispatcher
	socketPath   string
	replyTimeout time.Duration
	logger       *zap.Logger

	closeOnce sync.Once
	closeErr  error
	listener  net.Listener
	conns     sync.WaitGroup
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Dispatcher   *Dispatcher
	SocketPath   string
	ReplyTimeout time.Duration
	Logger       *zap.Logger
}

// NewServer creates a protocol server. The caller must hold the
// instance lock before starting it.
func NewServer(cfg ServerConfig) *Server {
	replyTimeout := cfg.ReplyTimeout
	if replyTimeout <= 0 {
		replyTimeout = DefaultReplyTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		dispatcher:   cfg.Dispatcher,
		socketPath:   cfg.SocketPath,
		replyTimeout: replyTimeout,
		logger:       logger,
	}
}

// Start binds the socket and begins accepting connections. The server
// shuts down when ctx is cancelled or Close is called.
func (s *Server) Start(ctx context.Context) error {
	// A previous run may have crashed and left its socket behind.
	// The instance lock guarantees no live server owns it.
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove stale socket", zap.Error(err))
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("Server listening", zap.String("socket", s.socketPath))

	go s.acceptLoop(ctx)
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			s.logger.Warn("Accept failed", zap.Error(err))
			continue
		}

		s.conns.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn reads one encoded command line, dispatches it and writes
// the encoded reply back.
func (s *Server) handleConn(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	raw, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && raw == "" {
		s.logger.Debug("Client sent no message", zap.Error(err))
		return
	}

	reply := s.dispatcher.Dispatch(strings.TrimSuffix(raw, "\n"))
	s.sendReply(conn, reply)
}

// sendReply delivers the encoded reply under the reply timeout. An
// empty encoded reply still sends the line terminator so a waiting
// client is released.
func (s *Server) sendReply(conn net.Conn, encoded string) bool {
	conn.SetWriteDeadline(time.Now().Add(s.replyTimeout))
	if _, err := conn.Write([]byte(encoded + "\n")); err != nil {
		s.logger.Warn("Failed to deliver reply", zap.Error(err))
		return false
	}
	return true
}

// Close stops accepting, waits for in-flight connections and removes
// the socket. It is safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.listener != nil {
			s.closeErr = s.listener.Close()
		}
		s.conns.Wait()
		os.Remove(s.socketPath)
		s.logger.Info("Server stopped")
	})
	return s.closeErr
}
