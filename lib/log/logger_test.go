package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		want  LogLevel
	}{
		{"trace", TRACE},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{"warning", WARN},
		{"err", ERROR},
	}
	for _, test := range tests {
		got, err := ParseLevel(test.value)
		require.NoError(t, err)
		assert.Equal(t, test.want, got)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "warn", WARN.String())
}

func TestLogger_Levels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sumview.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Init(f, false, INFO))
	defer Init(nil, false, TRACE) //nolint:errcheck

	l := NewLogger("commit", 2)
	l.Debugf("hidden %d", 1)
	l.Infof("moved %d message(s)", 3)
	Warnf("root warning")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "[commit] moved 3 message(s)")
	assert.Contains(t, out, "root warning")
}
