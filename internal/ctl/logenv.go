package ctl

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Leveled logging backed by zerolog with a console writer. The helpers keep
// call sites printf-shaped.
var logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
	NoColor:    envBool("PARROTCTL_NO_COLOR", false),
}).With().Timestamp().Logger()

func init() {
	SetLogLevel(envStr("PARROTCTL_LOG_LEVEL", "info"))
}

func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger = logger.Level(zerolog.DebugLevel)
	case "info":
		logger = logger.Level(zerolog.InfoLevel)
	case "warn", "warning":
		logger = logger.Level(zerolog.WarnLevel)
	case "error", "err":
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
}

// Logger exposes the structured logger for collaborators (pipeline runner).
func Logger() zerolog.Logger { return logger }

func debug(format string, a ...any) { logger.Debug().Msgf(format, a...) }
func info(format string, a ...any)  { logger.Info().Msgf(format, a...) }
func warn(format string, a ...any)  { logger.Warn().Msgf(format, a...) }
func errl(format string, a ...any)  { logger.Error().Msgf(format, a...) }

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}
