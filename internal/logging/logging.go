// Package logging builds the application's slog.Logger from the
// level/format configuration pair the config package and CLI flags agree on.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New returns a slog.Logger writing to stdout in the given format
// ("text" or "json") at the given level ("debug", "info", "warn", "error").
func New(level, format string) *slog.Logger {
	return slog.New(handlerForFormat(format, parseLevel(level)))
}

func handlerForFormat(format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, AddSource: true}
	switch format {
	case "json":
		return slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		opts.ReplaceAttr = trimSourcePath
		return slog.NewTextHandler(os.Stdout, opts)
	default:
		panic(fmt.Sprintf("logging: invalid format %q", format))
	}
}

// trimSourcePath shortens a source attribute to its last two path
// components so log lines stay readable outside of $GOPATH.
func trimSourcePath(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}
	parts := strings.Split(filepath.ToSlash(src.File), "/")
	if len(parts) > 2 {
		src.File = filepath.Join(parts[len(parts)-2:]...)
	}
	return a
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
