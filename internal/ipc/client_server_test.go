package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendRoundTrip(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			require.Equal(t, CommandStatus, req.Command)
			return Response{OK: true, State: "listening", RunID: "run-1", Mode: "voice", Message: "ok"}
		}))
	}()

	resp, err := Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "listening", resp.State)
	require.Equal(t, "run-1", resp.RunID)
	require.Equal(t, "voice", resp.Mode)
	require.Equal(t, "ok", resp.Message)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestSendDecodeResponseError(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		_, _ = reader.ReadBytes('\n')
		_, _ = conn.Write([]byte("not-json\n"))
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSendReadResponseError(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read response")
}

func TestServeDecodeRequestErrorResponse(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, _ Request) Response {
			return Response{OK: true}
		}))
	}()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not-json\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode request")

	cancel()
	require.NoError(t, <-serveDone)
}

func TestServeRejectsEmptyCommand(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handled := make(chan struct{}, 1)
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, _ Request) Response {
			handled <- struct{}{}
			return Response{OK: true}
		}))
	}()

	resp, err := Send(context.Background(), socketPath, Request{Command: "   "}, 200*time.Millisecond)
	require.NoError(t, err)
	require.False(t, resp.OK)
	require.Equal(t, "empty command", resp.Error)
	require.Empty(t, handled)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestPeerUIDMatchesCurrentUser(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			accepted <- conn
		}
	}()

	client, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer client.Close()

	server := <-accepted
	defer server.Close()

	uid, ok := peerUID(server)
	require.True(t, ok)
	require.Equal(t, uint32(os.Getuid()), uid)
}

func TestNoOwner(t *testing.T) {
	require.False(t, NoOwner(nil))
	require.True(t, NoOwner(os.ErrNotExist))
	require.True(t, NoOwner(syscall.ECONNREFUSED))
	require.True(t, NoOwner(&net.OpError{Op: "dial", Net: "unix", Err: os.NewSyscallError("connect", syscall.ENOENT)}))
	require.False(t, NoOwner(errors.New("read response: EOF")))
}

func TestProbe(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			if req.Command == "status" {
				return Response{OK: true, State: "idle"}
			}
			return Response{OK: false, Error: "bad"}
		}))
	}()

	alive, probeErr := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, probeErr)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-serveDone)

	alive, probeErr = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, probeErr)
	require.False(t, alive)
}

func TestServeRejectsOversizedRequest(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, _ Request) Response {
			return Response{OK: true}
		}))
	}()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	prefix := []byte(`{"command":"`)
	payload := append(prefix, bytes.Repeat([]byte("x"), maxRequestBytes-len(prefix))...)
	_, err = conn.Write(payload)
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "read request")

	cancel()
	require.NoError(t, <-serveDone)
}
