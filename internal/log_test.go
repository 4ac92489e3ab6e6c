package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_LevelsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelInfo)
	l.SetOutput(log.New(&buf, "", 0))

	store := l.With("Store")
	store.Info("loaded %d records", 24)
	store.Debug("hidden")

	assert.Equal(t, "[INFO] [Store] loaded 24 records\n", buf.String())
}
