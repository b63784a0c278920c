package observability

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_WritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	logger.Debug("hidden %d", 1)
	logger.Info("stage %s finished", "resume_analyzer")

	out := buf.String()
	assert.Contains(t, out, "stage resume_analyzer finished")
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "[career-path]")
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := NewLogger(nil, "verbose")
	assert.Equal(t, "info", logger.Level())
}

func TestGologLogger_SetLevel(t *testing.T) {
	logger := NewGologLogger(golog.New())
	assert.Equal(t, "info", logger.Level())

	logger.SetLevel("DEBUG")
	assert.Equal(t, "debug", logger.Level())

	logger.SetLevel("disable")
	assert.Equal(t, "disable", logger.Level())
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	logger := NopLogger()
	assert.NotPanics(t, func() {
		logger.Debug("debug %s", "x")
		logger.Info("info")
		logger.Warn("warn %v", map[string]int{"a": 1})
		logger.Error("error %f", 3.14)
	})
}
