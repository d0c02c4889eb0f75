package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturedLogger(minLevel LogLevel) (*SystemLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	sl := NewSystemLogger(SystemLoggerConfig{MinLevel: minLevel, Service: "paygate-test"})
	sl.out = log.New(buf, "", 0)
	return sl, buf
}

func TestNewSystemLogger_Defaults(t *testing.T) {
	sl := NewSystemLogger(SystemLoggerConfig{Service: "paygate"})
	assert.Equal(t, LevelInfo, sl.minLevel)
	assert.Equal(t, "paygate", sl.service)
}

func TestSystemLogger_JSONOutput(t *testing.T) {
	sl, buf := newCapturedLogger(LevelDebug)

	sl.Error("Payment failed", errors.New("card declined"), LogContext{
		Provider:  "stripe",
		RequestID: "req-1",
		Fields:    map[string]any{"tradeNo": "T1"},
	})

	var entry SystemLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, LevelError, entry.Level)
	assert.Equal(t, "Payment failed", entry.Message)
	assert.Equal(t, "card declined", entry.Error)
	assert.Equal(t, "stripe", entry.Provider)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "paygate-test", entry.Service)
	assert.Equal(t, "T1", entry.Fields["tradeNo"])
	assert.False(t, entry.Timestamp.IsZero())
}

func TestSystemLogger_MinLevelFiltering(t *testing.T) {
	sl, buf := newCapturedLogger(LevelWarn)

	sl.Debug("dropped")
	sl.Info("dropped")
	assert.Zero(t, buf.Len())

	sl.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestSystemLogger_AllLevels(t *testing.T) {
	sl, buf := newCapturedLogger(LevelDebug)

	sl.Debug("d")
	sl.Info("i")
	sl.Warn("w")
	sl.Error("e", nil)

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 4, lines)
}
