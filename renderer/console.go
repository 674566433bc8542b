package renderer

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/message"
)

type consoleStyles struct {
	system lipgloss.Style
	debug  lipgloss.Style
	info   lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	sheet  lipgloss.Style
	done   lipgloss.Style
}

// ConsoleRenderer は、メッセージを種類ごとに色分けして w に書き出します。
// 端末でない出力先では色を付けません。
type ConsoleRenderer struct {
	w      io.Writer
	styles consoleStyles
}

func NewConsoleRenderer(w io.Writer) *ConsoleRenderer {
	r := lipgloss.NewRenderer(w)
	return &ConsoleRenderer{
		w: w,
		styles: consoleStyles{
			system: r.NewStyle().Foreground(lipgloss.Color("8")),
			debug:  r.NewStyle().Faint(true),
			info:   r.NewStyle().Foreground(lipgloss.Color("6")),
			warn:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
			err:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			sheet:  r.NewStyle().Foreground(lipgloss.Color("2")),
			done:   r.NewStyle().Bold(true),
		},
	}
}

func (c *ConsoleRenderer) Render(b bus.Bus, wg *sync.WaitGroup) error {
	ch := b.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for m := range ch {
			fmt.Fprintln(c.w, c.format(m))
		}
	}()

	return nil
}

func (c *ConsoleRenderer) format(m *message.Message) string {
	switch m.Kind {
	case message.KindSystem:
		return c.styles.system.Render(m.Text)
	case message.KindError:
		return c.styles.err.Render("エラー: " + m.Text)
	case message.KindSheet:
		return "  " + c.styles.sheet.Render(m.Text)
	case message.KindBatchDone:
		return "\n" + c.styles.done.Render(m.Text)
	case message.KindLog:
		return c.levelStyle(m.Level).Render(fmt.Sprintf("[%s]", m.Level)) + " " + m.Text
	default:
		return m.Text
	}
}

func (c *ConsoleRenderer) levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return c.styles.err
	case l >= slog.LevelWarn:
		return c.styles.warn
	case l >= slog.LevelInfo:
		return c.styles.info
	default:
		return c.styles.debug
	}
}

var _ Renderer = (*ConsoleRenderer)(nil)
