package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	buspkg "github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/buslog"
	"github.com/sat8bit/charagen/config"
	"github.com/sat8bit/charagen/llm"
	"github.com/sat8bit/charagen/message"
	"github.com/sat8bit/charagen/renderer"
	"github.com/sat8bit/charagen/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// app は、サブコマンドが共有する設定・バス・ロガーです。
type app struct {
	cfg    *config.Config
	bus    *buspkg.MemoryBus
	logger *slog.Logger
	wg     sync.WaitGroup
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.Log.SlogLevel()

	a := &app{
		cfg: cfg,
		bus: buspkg.NewMemoryBus(0),
	}
	// ログと進捗はバス経由で標準エラーへ、生成したプロンプトは標準出力へ出す
	if err := renderer.NewConsoleRenderer(os.Stderr).Render(a.bus, &a.wg); err != nil {
		return nil, fmt.Errorf("failed to initialize console renderer: %w", err)
	}
	a.logger = slog.New(buslog.NewBusHandler(a.bus, level))
	slog.SetDefault(a.logger)
	return a, nil
}

func (a *app) status(kind message.Kind, text string) {
	_ = a.bus.Broadcast(message.New(kind, text))
}

// close は、バスを閉じて表示し残しを出し切ります。
func (a *app) close() {
	a.bus.Close()
	a.wg.Wait()
}

func (a *app) collaborator(ctx context.Context) (llm.LLM, error) {
	c := a.cfg.Collaborator
	switch c.Backend {
	case "gemini":
		return llm.NewGemini(ctx, a.cfg.Gemini.Project, a.cfg.Gemini.Location, a.cfg.Gemini.Model, c.Timeout)
	default:
		return llm.NewClaudeCLI(
			llm.WithCommand(c.Command),
			llm.WithTimeout(c.Timeout),
			llm.WithLogger(a.logger),
		), nil
	}
}

func (a *app) store() (store.Store, func() error, error) {
	if a.cfg.Store.Kind == "sqlite" {
		s, err := store.NewSQLiteStore(a.cfg.Store.SQLitePath, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return store.NewDirStore(a.cfg.Output.Dir, a.logger), func() error { return nil }, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C シグナルで cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	var (
		configPath string
		a          *app
	)

	rootCmd := &cobra.Command{
		Use:   "charagen",
		Short: "Character persona sheets and system prompts",
		Long: titleStyle.Render("charagen") + `

キャラクター定義を検証し、ブレにくいシステムプロンプトを組み立てます。
自然言語の指示からキャラクターシートを一括生成することもできます。

` + dimStyle.Render("Use 'charagen [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")

	rootCmd.AddCommand(
		compileCmd(func() *app { return a }),
		characterCmd(func() *app { return a }),
		postCmd(func() *app { return a }),
		generateCmd(func() *app { return a }, cancel),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if a != nil {
			if !errors.As(err, &reported) {
				a.status(message.KindError, err.Error())
			}
			a.close()
		} else {
			fmt.Fprintln(os.Stderr, "エラー:", err)
		}
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
