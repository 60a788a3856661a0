package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"network", NetworkError("timeout").Build(), 8},
		{"filesystem", FileSystemError("write failed").Build(), 11},
		{"internal", InternalError("bug").Build(), 10},
		{"unclassified", stderrors.New("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	require.Empty(t, quiet.FormatError(nil))
	require.Equal(t, "Error: unknown", quiet.FormatError(stderrors.New("unknown")))
	require.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("bug").Build()))

	fsErr := FileSystemError("write index.html").WithCause(stderrors.New("permission denied")).Build()
	require.Equal(t, "Error: write index.html: permission denied", quiet.FormatError(fsErr))
	require.Equal(t, fsErr.Error(), verbose.FormatError(fsErr))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(FileSystemError("write index.html").WithContext("path", "dist/index.html").Build())

	require.Equal(t, 11, code)
	require.Contains(t, stderr.String(), "write index.html")
	require.Contains(t, logs.String(), "category=filesystem")
	require.Contains(t, logs.String(), "path=dist/index.html")

	code = -1
	adapter.HandleError(nil)
	require.Equal(t, -1, code)
}
