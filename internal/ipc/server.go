package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// connTimeout bounds how long one client may take to send its request and
// read the reply.
const connTimeout = 2 * time.Second

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one request per connection until ctx is cancelled or the
// listener closes. Connections in flight are finished before it returns.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}
		inflight.Go(func() { answer(ctx, conn, handler) })
	}
}

func answer(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	var resp Response
	var req Request
	if err := readMessage(conn, "request", &req); err != nil {
		resp = Response{Error: err.Error()}
	} else if !KnownCommand(req.Command) {
		resp = Response{Error: fmt.Sprintf("unknown command: %s", req.Command)}
	} else {
		resp = handler.Handle(ctx, req)
	}
	_ = writeMessage(conn, "response", resp)
}
