// Package ipc implements the newline-delimited JSON protocol spoken over the
// per-user session socket.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Commands understood by a session owner.
const (
	CommandStatus     = "status"
	CommandStop       = "stop"
	CommandToggle     = "toggle"
	CommandTranscript = "transcript"
)

var commands = []string{CommandStatus, CommandStop, CommandToggle, CommandTranscript}

// KnownCommand reports whether name is a command an owner answers.
func KnownCommand(name string) bool {
	return slices.Contains(commands, name)
}

// maxMessageBytes caps one encoded message. A transcript response is the
// largest message on the wire.
const maxMessageBytes = 1 << 20

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool     `json:"ok"`
	State   string   `json:"state,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Session string   `json:"session,omitempty"`
	Device  string   `json:"device,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

// readMessage reads one newline-terminated JSON value into v. kind names the
// message in errors ("request" or "response").
func readMessage(r io.Reader, kind string, v any) error {
	reader := bufio.NewReaderSize(io.LimitReader(r, maxMessageBytes), 4096)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read %s: %w", kind, err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}

// writeMessage encodes v as a single line.
func writeMessage(w io.Writer, kind string, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return nil
}
