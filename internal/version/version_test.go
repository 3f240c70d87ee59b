package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "0.4.0", "abc123", "2026-10-01"

	got := String()
	require.Contains(t, got, "livescribe 0.4.0")
	require.Contains(t, got, "commit=abc123")
	require.Contains(t, got, "date=2026-10-01")
	require.Contains(t, got, "go=go")
}

func TestCommitFallback(t *testing.T) {
	c := Commit
	t.Cleanup(func() { Commit = c })

	Commit = ""
	require.NotEmpty(t, commit())
}
