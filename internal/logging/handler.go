package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// maskedKeys lists attribute key fragments whose values never reach the log.
var maskedKeys = []string{"password", "secret", "token"}

// Handler writes one colourised line per record when the writer is a
// terminal and plain text otherwise.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string

	colored bool
	levels  map[slog.Level]*color.Color
	dim     *color.Color
	key     *color.Color
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}, colored: SupportsColor(out)}
	if h.colored {
		h.levels = map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		}
		h.dim = color.New(color.FgHiBlack)
		h.key = color.New(color.FgCyan)
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.dim, r.Time.Format(time.TimeOnly)))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", h.paint(h.levelColor(r.Level), r.Level.String()), r.Message)
	for _, a := range h.attrs {
		h.writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, nested := range a.Value.Group() {
			h.writeAttr(b, prefix+a.Key+".", nested)
		}
		return
	}
	key := prefix + a.Key
	value := a.Value.String()
	if masked(a.Key) {
		value = "****"
	}
	fmt.Fprintf(b, " %s=%s", h.paint(h.key, key), value)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *Handler) levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return h.levels[slog.LevelError]
	case level >= slog.LevelWarn:
		return h.levels[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return h.levels[slog.LevelInfo]
	default:
		return h.levels[slog.LevelDebug]
	}
}

func (h *Handler) paint(c *color.Color, s string) string {
	if !h.colored || c == nil {
		return s
	}
	return c.Sprint(s)
}

func masked(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range maskedKeys {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor honours NO_COLOR and TERM=dumb through fatih/color and
// otherwise requires a terminal.
func SupportsColor(w io.Writer) bool {
	return !color.NoColor && IsTTY(w)
}
