package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	originalVersion := Version
	originalCommit := Commit
	originalDate := Date
	t.Cleanup(func() {
		Version = originalVersion
		Commit = originalCommit
		Date = originalDate
	})
	Version, Commit, Date = version, commit, date
}

func TestStringIncludesBuildMetadata(t *testing.T) {
	stamp(t, "1.2.3", "abc123", "2026-02-18")

	got := String()
	require.Contains(t, got, "lma 1.2.3")
	require.Contains(t, got, "commit=abc123")
	require.Contains(t, got, "date=2026-02-18")
	require.Contains(t, got, "go=")
}

func TestStringWithoutStampedCommit(t *testing.T) {
	stamp(t, "dev", "none", "unknown")

	got := String()
	require.Contains(t, got, "lma dev")
	require.Contains(t, got, "commit=")
}

func TestUserAgent(t *testing.T) {
	stamp(t, "0.4.0", "abc", "today")
	require.Equal(t, "lma/0.4.0", UserAgent())
}
