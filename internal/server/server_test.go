package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, h History) (string, context.CancelFunc) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "copyq.sock")
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher(DispatcherConfig{
		History:   h,
		Presenter: &fakePresenter{},
		Actions:   &fakeRunner{},
		Quit:      cancel,
	})
	srv := NewServer(ServerConfig{Dispatcher: d, SocketPath: socketPath})
	require.NoError(t, srv.Start(ctx))

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return socketPath, cancel
}

func TestServerClientRoundTrip(t *testing.T) {
	socketPath, _ := startTestServer(t, &fakeHistory{})

	reply, err := Send(socketPath, []string{"length"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "0\n", reply.Text)
	assert.Zero(t, reply.ExitCode)

	_, err = Send(socketPath, []string{"add", "hi", "there"}, 0)
	require.NoError(t, err)

	reply, err = Send(socketPath, []string{"length"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1\n", reply.Text)
}

func TestServerUnknownCommandExitCode(t *testing.T) {
	socketPath, _ := startTestServer(t, &fakeHistory{})

	reply, err := Send(socketPath, []string{"bogus"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Unknown command.\n", reply.Text)
	assert.Equal(t, 2, reply.ExitCode)

	reply, err = Send(socketPath, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "Unknown command.\n", reply.Text, "empty message takes the unknown path")
}

func TestServerSyntaxErrorOverSocket(t *testing.T) {
	socketPath, _ := startTestServer(t, &fakeHistory{items: []string{"seed"}})

	reply, err := Send(socketPath, []string{"action", "5"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bad \"action\" command syntax!\naction [row=0] cmd [sep=\"\\n\"]\n", reply.Text)
	assert.Equal(t, 2, reply.ExitCode)
}

func TestServerSerializesConcurrentClients(t *testing.T) {
	h := &fakeHistory{}
	socketPath, _ := startTestServer(t, h)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := Send(socketPath, []string{"add", fmt.Sprintf("item %d", i)}, 0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reply, err := Send(socketPath, []string{"length"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "10\n", reply.Text)
}

func TestServerExitCommand(t *testing.T) {
	socketPath, _ := startTestServer(t, &fakeHistory{})

	reply, err := Send(socketPath, []string{"exit"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Exiting server.", reply.Text)
	assert.Zero(t, reply.ExitCode)

	waitFor(t, func() bool { return !IsRunning(socketPath) })

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket removed on shutdown")
}

func TestServerRemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "copyq.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0600))

	d := NewDispatcher(DispatcherConfig{
		History:   &fakeHistory{},
		Presenter: &fakePresenter{},
		Actions:   &fakeRunner{},
	})
	srv := NewServer(ServerConfig{Dispatcher: d, SocketPath: socketPath})
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Close() })

	reply, err := Send(socketPath, []string{"length"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "0\n", reply.Text)
}

func TestClientWithoutServer(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "missing.sock")

	_, err := Send(socketPath, []string{"length"}, 0)
	assert.Error(t, err)
	assert.False(t, IsRunning(socketPath))
}

func TestIsRunning(t *testing.T) {
	socketPath, cancel := startTestServer(t, &fakeHistory{})

	assert.True(t, IsRunning(socketPath))

	cancel()
	waitFor(t, func() bool { return !IsRunning(socketPath) })
}

func TestAcquireLockExclusive(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "run", "copyqd.pid")

	lock, err := AcquireLock(lockPath)
	require.NoError(t, err)

	_, err = AcquireLock(lockPath)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, lock.Release())

	lock, err = AcquireLock(lockPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "pid file removed on release")
}

func TestSocketPathResolution(t *testing.T) {
	t.Setenv("COPYQ_SOCKET", "/custom/copyq.sock")
	assert.Equal(t, "/custom/copyq.sock", SocketPath("/configured.sock"))

	t.Setenv("COPYQ_SOCKET", "")
	assert.Equal(t, "/configured.sock", SocketPath("/configured.sock"))

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/copyq.sock", SocketPath(""))

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, filepath.Join(os.TempDir(), "copyq.sock"), SocketPath(""))
}
