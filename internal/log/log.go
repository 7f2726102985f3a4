package log

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// enabledSections controls which debug sections reach the output.
// Warnings and errors always pass through.
var enabledSections = []string{}

var LoggerOpts = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(&filteringHandler{underlying: slog.NewTextHandler(os.Stderr, LoggerOpts)})

// EnableSection turns on debug logging for a section prefix ("intern",
// "judge", "evaluate", ...). Intended for tests and debugging sessions.
func EnableSection(section string) {
	if !slices.Contains(enabledSections, section) {
		enabledSections = append(enabledSections, section)
	}
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	attrs      []slog.Attr
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	wantSection := false
	check := func(attr slog.Attr) bool {
		wantSection = wantSection || attr.Key == "section" && slices.ContainsFunc(enabledSections, func(section string) bool {
			return strings.HasPrefix(attr.Value.String(), section)
		})
		return !wantSection
	}
	for _, attr := range f.attrs {
		if !check(attr) {
			break
		}
	}
	if !wantSection {
		record.Attrs(check)
	}
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(attrs),
		attrs:      append(slices.Clone(f.attrs), attrs...),
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{underlying: f.underlying.WithGroup(name), attrs: f.attrs}
}
