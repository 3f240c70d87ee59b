// Package cli parses livescribe's command line.
package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type Command string

const (
	CommandRun        Command = "run"
	CommandToggle     Command = "toggle"
	CommandStop       Command = "stop"
	CommandStatus     Command = "status"
	CommandTranscript Command = "transcript"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

var commands = []Command{
	CommandRun, CommandToggle, CommandStop, CommandStatus, CommandTranscript,
	CommandDevices, CommandDoctor, CommandVersion, CommandHelp,
}

// Parsed is the result of Parse.
type Parsed struct {
	Command    Command
	ConfigPath string
}

// Parse reads flags and at most one command. No command means help.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp}
	seen := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			parsed.Command = CommandHelp
			seen = true
		case arg == "--version":
			parsed.Command = CommandVersion
			seen = true
		case arg == "--config":
			i++
			if i >= len(args) || strings.TrimSpace(args[i]) == "" {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			if strings.TrimSpace(parsed.ConfigPath) == "" {
				return Parsed{}, errors.New("--config requires a path")
			}
		case strings.HasPrefix(arg, "-"):
			return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
		default:
			if seen {
				return Parsed{}, fmt.Errorf("unexpected argument %q", arg)
			}
			cmd := Command(arg)
			if !slices.Contains(commands, cmd) {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}
			parsed.Command = cmd
			seen = true
		}
	}
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  run         Transcribe the microphone until interrupted or stopped
  toggle      Start a session, or stop the running one
  stop        Stop the running session and finalize its transcript
  status      Print the session state
  transcript  Print the running session's transcript so far
  devices     List input devices
  doctor      Check configuration, microphone, and recognition backend
  version     Print version information
  help        Show this help

Flags:
  --config PATH   Config file (default: $XDG_CONFIG_HOME/livescribe/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
