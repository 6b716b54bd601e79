package logger_test

import (
	"bytes"
	"testing"

	"github.com/alkime/monshin/internal/config"
	"github.com/alkime/monshin/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger_DebugInDevelopment(t *testing.T) {
	lg := logger.SetupLogger(&config.Config{Env: "development", LogLevel: "info"})

	assert.True(t, lg.Enabled(t.Context(), -4))
}

func TestSetupLogger_InfoInProduction(t *testing.T) {
	lg := logger.SetupLogger(&config.Config{Env: config.EnvProduction, LogLevel: "info"})

	assert.False(t, lg.Enabled(t.Context(), -4))
}

func TestSetupCLILogger_WritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer

	lg := logger.SetupCLILogger(&buf, false)
	lg.Info("capture started", "method", "speech")
	lg.Debug("hidden")

	assert.Contains(t, buf.String(), "capture started")
	assert.Contains(t, buf.String(), "intake")
	assert.NotContains(t, buf.String(), "hidden")
}
