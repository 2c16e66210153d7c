package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfig(t *testing.T) {
	path := writeConfig(t, `
roster:
  'פלאפון תקשורת בע"מ': 2
  'מי  מודיעין בע"מ': 1
  Fuel Co: 0
config:
  request_timeout: 10s
`)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		`פלאפון תקשורת בע"מ`: 2,
		`מי  מודיעין בע"מ`:   1,
		"Fuel Co":            0,
	}, cfg.Roster)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	roster, err := cfg.BuildRoster()
	require.NoError(t, err)
	assert.Equal(t, 3, roster.Len())
	assert.True(t, roster.Contains(`מי  מודיעין בע"מ`))
}

func TestDefaultTimeout(t *testing.T) {
	cfg, err := InitConfig(writeConfig(t, "roster:\n  A: 1\n"))
	require.NoError(t, err)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, defaultRequestTimeout, timeout)
}

func TestInitConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty roster", "config:\n  request_timeout: 5s\n"},
		{"negative count", "roster:\n  A: -1\n"},
		{"bad timeout", "roster:\n  A: 1\nconfig:\n  request_timeout: soon\n"},
		{"zero timeout", "roster:\n  A: 1\nconfig:\n  request_timeout: 0s\n"},
		{"not yaml", "roster: [1, 2"},
		{"count not a number", "roster:\n  A: many\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := InitConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "reading config")
}
