package httpapi

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Silent until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "httpapi").Logger() }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once at startup.
var defaultLogLevel = func() LogLevel {
	if v, ok := os.LookupEnv("EXCITOND_REQUEST_LOG"); ok {
		return parseLevel(v)
	}
	return LevelInfo
}()

// requestLogLevel lets a single request raise or lower its own logging via
// ?log= or the X-Log-Level header.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logEvent returns the zerolog event for a request outcome at lvl, or nil
// when the request's level filters it out. zerolog methods are nil-safe.
func logEvent(lvl LogLevel, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError && lvl >= LevelError:
		return zlog.Error()
	case lvl >= LevelInfo:
		return zlog.Info()
	default:
		return nil
	}
}
