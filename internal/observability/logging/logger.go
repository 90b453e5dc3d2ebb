package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

type Options struct {
	Service   string
	Level     string
	SentryDSN string
	// Writer defaults to stdout.
	Writer io.Writer
}

// New builds a JSON logger tagged with the service name. With a Sentry DSN,
// error records also go to Sentry. The returned func flushes pending events.
func New(opts Options) (*slog.Logger, func(), error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	handlers := []slog.Handler{
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(opts.Level)}),
	}
	flush := func() {}

	if opts.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:        opts.SentryDSN,
			ServerName: opts.Service,
		}); err != nil {
			return nil, flush, fmt.Errorf("init sentry: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		flush = func() { sentry.Flush(2 * time.Second) }
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}
	return slog.New(handler).With("service", opts.Service), flush, nil
}

func NewJSONLogger(service, level string) *slog.Logger {
	logger, _, _ := New(Options{Service: service, Level: level})
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
