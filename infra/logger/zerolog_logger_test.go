package logger

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	assert.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestOutputSelection(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	_, ok := output().(zerolog.ConsoleWriter)
	assert.True(t, ok, "dev environment should use the console writer")

	t.Setenv("APP_ENV", "production")
	_, ok = output().(*os.File)
	assert.True(t, ok, "non-dev environment should write plain to stdout")
}

func TestNew_ProductionFormat(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	l := New("planner")
	assert.NotNil(t, l)
	l.Infof("structured output")
}
