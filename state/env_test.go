package state

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())

	env := EnvFromContext(ctx)
	if env.Cfg != nil || env.Rpt != nil || env.Log != nil {
		t.Error("configuration, report and logger must not be set before loading")
	}
	if env.Uptime() < 0 {
		t.Error("uptime must not be negative")
	}

	if EnvFromContext(ctx) != env {
		t.Error("environment must be shared by the context")
	}

	// no logger yet, both must be no-op
	env.RedirectStdLog()
	env.RestoreStdLog()

	env.Log = zaptest.NewLogger(t)
	env.RedirectStdLog()
	env.RestoreStdLog()
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for context without environment")
		}
	}()
	EnvFromContext(context.Background())
}
