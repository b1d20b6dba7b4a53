package logger

import (
	"testing"

	"github.com/deppfellow/people-api/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		"info":   zerolog.InfoLevel,
		"warn":   zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"chatty": zerolog.InfoLevel,
		"":       zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, int(tracelog.LogLevelDebug), GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, int(tracelog.LogLevelWarn), GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, int(tracelog.LogLevelError), GetPgxTraceLogLevel(zerolog.FatalLevel))
	assert.Equal(t, int(tracelog.LogLevelNone), GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestLoggerServiceDisabledWithoutLicense(t *testing.T) {
	svc, err := NewLoggerService(config.DefaultObservabilityConfig())
	require.NoError(t, err)
	assert.Nil(t, svc.GetApplication())

	// Safe on both a disabled service and a nil one.
	svc.Shutdown()
	var nilSvc *LoggerService
	assert.Nil(t, nilSvc.GetApplication())
	nilSvc.Shutdown()
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	log := NewLogger(cfg)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestWithTraceContextNilTxn(t *testing.T) {
	base := zerolog.Nop()
	got := WithTraceContext(base, nil)
	assert.Equal(t, base.GetLevel(), got.GetLevel())
}
