package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// maxRequestBytes bounds one request line.
	maxRequestBytes = 4096
	// requestReadTimeout bounds how long a client may take to send its line.
	requestReadTimeout = 2 * time.Second
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers clients on listener until ctx is cancelled or the listener
// closes. Requests from other users are refused.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			reply(conn, serveConn(ctx, conn, handler))
		}()
	}
}

func serveConn(ctx context.Context, conn net.Conn, handler Handler) Response {
	if uid, ok := peerUID(conn); ok && uid != uint32(os.Getuid()) {
		return Response{Error: fmt.Sprintf("permission denied for uid %d", uid)}
	}

	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	line, err := bufio.NewReader(io.LimitReader(conn, maxRequestBytes)).ReadBytes('\n')
	if err != nil {
		return Response{Error: fmt.Sprintf("read request: %v", err)}
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: fmt.Sprintf("decode request: %v", err)}
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		return Response{Error: "empty command"}
	}

	return handler.Handle(ctx, req)
}

func reply(conn net.Conn, resp Response) {
	_ = json.NewEncoder(conn).Encode(resp)
}
