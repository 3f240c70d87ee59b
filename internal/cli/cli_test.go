package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  Command
		wantPath string
		wantErr  string
	}{
		{name: "no args", args: nil, wantCmd: CommandHelp},
		{name: "short help", args: []string{"-h"}, wantCmd: CommandHelp},
		{name: "version flag", args: []string{"--version"}, wantCmd: CommandVersion},
		{name: "run", args: []string{"run"}, wantCmd: CommandRun},
		{name: "transcript", args: []string{"transcript"}, wantCmd: CommandTranscript},
		{name: "config before", args: []string{"--config", "/tmp/ls.jsonc", "doctor"}, wantCmd: CommandDoctor, wantPath: "/tmp/ls.jsonc"},
		{name: "config after", args: []string{"toggle", "--config", "/tmp/ls.yaml"}, wantCmd: CommandToggle, wantPath: "/tmp/ls.yaml"},
		{name: "config equals", args: []string{"--config=/tmp/a.jsonc", "status"}, wantCmd: CommandStatus, wantPath: "/tmp/a.jsonc"},
		{name: "config missing", args: []string{"--config"}, wantErr: "--config requires a path"},
		{name: "config empty", args: []string{"--config=", "run"}, wantErr: "--config requires a path"},
		{name: "unknown flag", args: []string{"--verbose"}, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"record"}, wantErr: "unknown command"},
		{name: "two commands", args: []string{"run", "stop"}, wantErr: "unexpected argument"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
		})
	}
}

func TestHelpTextListsEveryCommand(t *testing.T) {
	help := HelpText("livescribe")
	require.Contains(t, help, "livescribe [--config PATH] <command>")
	for _, cmd := range commands {
		require.Contains(t, help, "  "+string(cmd)+" ")
	}
}
