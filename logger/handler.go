package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// TimeFormat is the timestamp layout written at the start of every line.
const TimeFormat = "2006-01-02 15:04:05.000"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level written; nil means LevelDebug.
	Level slog.Leveler
}

// Handler is a slog.Handler writing one line per record:
//
//	[2006-01-02 15:04:05.000] [LEVEL] message key=value
type Handler struct {
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	attrs  []byte
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a Handler writing to w.
func NewHandler(w io.Writer, opts *HandlerOptions) *Handler {
	h := &Handler{out: w, mu: &sync.Mutex{}, level: LevelDebug}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether records at level are written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes r.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.WriteString(r.Time.Format(TimeFormat))
	buf.WriteString("] [")
	buf.WriteString(LevelName(r.Level))
	buf.WriteString("] ")
	buf.WriteString(r.Message)
	buf.Write(h.attrs)

	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	var buf bytes.Buffer
	prefix := h.groupPrefix()
	for _, a := range attrs {
		appendAttr(&buf, prefix, a)
	}
	h2.attrs = append(h2.attrs, buf.Bytes()...)
	return h2
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		out:    h.out,
		mu:     h.mu,
		level:  h.level,
		attrs:  append([]byte(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *Handler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, sub, ga)
		}
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(quoteIfNeeded(a.Value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
