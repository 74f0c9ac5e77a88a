// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContextBindsLate(t *testing.T) {
	// created before any handler is installed, like package-level loggers
	logger := WithContext("pkg", "vault")

	var buf bytes.Buffer
	old := Root()
	SetDefault(NewLogger(LogfmtHandler(&buf)))
	defer SetDefault(old)

	logger.Info("bonded", "amount", 42)

	out := buf.String()
	assert.Contains(t, out, "pkg=vault")
	assert.Contains(t, out, "msg=bonded")
	assert.Contains(t, out, "amount=42")
}

func TestFromLegacyLevel(t *testing.T) {
	tests := []struct {
		legacy int
		want   slog.Level
	}{
		{0, LevelCrit},
		{1, LevelError},
		{2, LevelWarn},
		{3, LevelInfo},
		{4, LevelDebug},
		{5, LevelTrace},
		{9, LevelTrace},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromLegacyLevel(tt.legacy))
	}
}

func TestTerminalHandlerPadding(t *testing.T) {
	var buf bytes.Buffer
	h := NewTerminalHandler(&buf, false)
	l := NewLogger(h)

	l.Info("first", "key", "short")
	l.Info("second", "key", "a-longer-value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "key=")
	}
}
