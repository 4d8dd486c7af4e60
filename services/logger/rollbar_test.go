package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
)

func newObservedLogger() (*RollbarLogger, *observer.ObservedLogs) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(obsCore).Sugar(), &core.Config{Env: "TEST"})
	l.Enable(false)
	return l, logs
}

func TestRollbarLogger_fields(t *testing.T) {
	l, logs := newObservedLogger()

	l.Error("aggregate recompute failed",
		errors.New("boom"),
		map[string]interface{}{"courseId": "c1"},
		auth.Identity("learner-1"),
	)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		e := entries[0]
		assert.Equal(t, zapcore.ErrorLevel, e.Level)
		assert.Equal(t, "aggregate recompute failed", e.Message)
		ctx := e.ContextMap()
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "c1", ctx["courseId"])
		assert.Equal(t, "learner-1", ctx["learner"])
	}
}

func TestRollbarLogger_levels(t *testing.T) {
	l, logs := newObservedLogger()

	l.Debug("d")
	l.Info("i")
	l.Warn("w", "extra arg")

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
		assert.Equal(t, "extra arg", entries[2].ContextMap()["extra"])
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newObservedLogger()
	err := errors.New("boom")

	got := l.prepare("msg", []interface{}{auth.Identity("a"), err, auth.Identity("b")})
	assert.Equal(t, []interface{}{"msg", err}, got)
}
