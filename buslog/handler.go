package buslog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/message"
)

// BusHandler is a slog.Handler that turns log records into bus messages,
// so that the console renderer shows them inline with status output.
type BusHandler struct {
	bus    bus.Bus
	level  slog.Leveler
	pre    string // WithAttrs で渡された属性を整形済みで持つ
	groups []string
}

// NewBusHandler creates a new BusHandler. A nil level means slog.LevelInfo.
func NewBusHandler(b bus.Bus, level slog.Leveler) *BusHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &BusHandler{bus: b, level: level}
}

// Enabled reports whether the handler handles records at the given level.
// The handler ignores records whose level is lower.
func (h *BusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record as "message key=value ..." and broadcasts it.
func (h *BusHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Message)
	buf.WriteString(h.pre)

	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, prefix, a)
		return true
	})

	return h.bus.Broadcast(&message.Message{
		Text:  buf.String(),
		At:    r.Time,
		Kind:  message.KindLog,
		Level: r.Level,
	})
}

func (h *BusHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(buf, p, ga)
		}
		return
	}
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\n\"") {
		v = fmt.Sprintf("%q", v)
	}
	fmt.Fprintf(buf, " %s%s=%s", prefix, a.Key, v)
}

// WithAttrs returns a new BusHandler whose attributes consist of
// the handler's attributes followed by attrs.
func (h *BusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf strings.Builder
	buf.WriteString(h.pre)
	prefix := h.prefix()
	for _, a := range attrs {
		writeAttr(&buf, prefix, a)
	}
	h2 := *h
	h2.pre = buf.String()
	return &h2
}

// WithGroup returns a new BusHandler with the given group name.
// Attributes added earlier are not qualified by the group.
func (h *BusHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

var _ slog.Handler = (*BusHandler)(nil)
