package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type ctxLoggerKey struct{}
type ctxAttrsKey struct{}

// fallback is used until a command installs the configured logger.
var fallback = sync.OnceValue(func() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
})

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// WithAttrs adds attrs to every later log call made with the returned context. A key that
// is already present takes the new value.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxAttrsKey{}, mergeAttrs(attrsFrom(ctx), attrs))
}

// WithRequestID tags every log line of one inbound request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return WithAttrs(ctx, slog.String("request_id", requestID))
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelError, msg, attrs)
}

func log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	loggerFrom(ctx).LogAttrs(ctx, level, msg, mergeAttrs(attrsFrom(ctx), attrs)...)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback()
}

func attrsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	return attrs
}

// mergeAttrs returns a new slice; neither input is modified.
func mergeAttrs(base, extra []slog.Attr) []slog.Attr {
	merged := make([]slog.Attr, len(base), len(base)+len(extra))
	copy(merged, base)

	for _, attr := range extra {
		replaced := false
		for i := range merged {
			if attr.Key != "" && merged[i].Key == attr.Key {
				merged[i] = attr
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, attr)
		}
	}
	return merged
}
