package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// Send performs one request/response exchange against the session owner.
// The whole exchange, dial included, must finish within timeout.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Response{}, fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := writeMessage(conn, "request", req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := readMessage(conn, "response", &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Command sends command to the owner at path. A missing or refused socket is
// reported as ErrNoSession rather than a transport failure. A response
// carrying an error is returned together with that error.
func Command(ctx context.Context, path, command string, timeout time.Duration) (Response, error) {
	resp, err := Send(ctx, path, Request{Command: command}, timeout)
	switch {
	case ownerAbsent(err):
		return Response{}, ErrNoSession
	case err != nil:
		return Response{}, err
	case !resp.OK && resp.Error != "":
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

// Probe reports whether a responsive owner is listening on path. An owner
// that accepts but never answers is neither alive nor absent: Probe returns
// an error so the socket is left alone.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	_, err := Send(ctx, path, Request{Command: CommandStatus}, timeout)
	switch {
	case err == nil:
		return true, nil
	case ownerAbsent(err):
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

func ownerAbsent(err error) bool {
	return err != nil && (errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED))
}
