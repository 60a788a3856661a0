package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyEndpoint   = "endpoint"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeySection    = "section"
	KeyTrigger    = "trigger"
	KeySubject    = "subject"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Endpoint(e string) slog.Attr     { return slog.String(KeyEndpoint, e) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration reports d in milliseconds under the canonical duration key.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
