package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
}

func TestNew_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "server.log")
	log, level := New("hexlands", Options{Level: zapcore.InfoLevel, File: path}, &console)

	log.Debug("hidden")
	log.Info("game created", zap.String("game", "g1"))
	level.SetLevel(zapcore.DebugLevel)
	log.Debug("now visible")
	require.NoError(t, log.Sync())

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "game created")
	assert.Contains(t, out, "now visible")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"game created"`)
	assert.Contains(t, lines[0], `"game":"g1"`)
	assert.Contains(t, lines[0], `"logger":"hexlands"`)
	assert.NotContains(t, lines[0], "\x1b[")
}
