package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sat8bit/charagen/adapter"
	"github.com/sat8bit/charagen/batch"
	"github.com/sat8bit/charagen/fetcher"
	"github.com/sat8bit/charagen/message"
	"github.com/sat8bit/charagen/persona"
	"github.com/sat8bit/charagen/prompt"
	"github.com/sat8bit/charagen/supervisor"
	"github.com/spf13/cobra"
)

func compileCmd(getApp func() *app) *cobra.Command {
	var (
		sample string
		random bool
	)
	cmd := &cobra.Command{
		Use:   "compile [sheet.yaml]",
		Short: "Validate a character sheet and print its system prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()

			sheet, err := selectSheet(args, sample, random)
			if err != nil {
				return err
			}

			text := prompt.Compile(sheet)
			fmt.Fprintln(cmd.OutOrStdout(), text)

			chars, tokens := prompt.Stats(text)
			a.status(message.KindSystem, fmt.Sprintf("文字数: %d / 推定トークン: %d", chars, tokens))
			return nil
		},
	}
	cmd.Flags().StringVar(&sample, "sample", "", "use a bundled sample sheet by name")
	cmd.Flags().BoolVar(&random, "random", false, "use a random bundled sample sheet")
	return cmd
}

func selectSheet(args []string, sample string, random bool) (*persona.CharacterSheet, error) {
	if len(args) == 1 {
		return loadSheetFile(args[0])
	}

	pool, err := persona.NewPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load sample sheets: %w", err)
	}
	switch {
	case sample != "":
		return pool.GetByName(sample)
	case random:
		sheets, err := pool.GetRandomN(1)
		if err != nil {
			return nil, err
		}
		return sheets[0], nil
	}
	return nil, fmt.Errorf("specify a sheet file, --sample or --random")
}

func loadSheetFile(path string) (*persona.CharacterSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file %s: %w", path, err)
	}
	m, err := persona.ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return persona.NewSheet(m)
}

func characterCmd(getApp func() *app) *cobra.Command {
	var topicText string
	cmd := &cobra.Command{
		Use:   "character <doc.yaml>",
		Short: "Print the system prompt of a layered character document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()

			r, err := adapter.LoadFile(args[0])
			if err != nil {
				return err
			}
			text := r.SystemPrompt()
			if social, ok := r.(*adapter.Social); ok && strings.TrimSpace(topicText) != "" {
				text = social.PostPrompt(topicText)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)

			base := r.Base()
			chars, tokens := prompt.Stats(text)
			a.status(message.KindSystem, fmt.Sprintf("%s（%s）文字数: %d / 推定トークン: %d",
				base.Identity.Name, base.Purpose, chars, tokens))
			return nil
		},
	}
	cmd.Flags().StringVar(&topicText, "topic", "", "theme of a post (social personas only)")
	return cmd
}

func postCmd(getApp func() *app) *cobra.Command {
	var (
		topicText string
		feedURL   string
	)
	cmd := &cobra.Command{
		Use:   "post <doc.yaml>",
		Short: "Print a post-generation prompt for a social persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()

			r, err := adapter.LoadFile(args[0])
			if err != nil {
				return err
			}
			social, ok := r.(*adapter.Social)
			if !ok {
				return fmt.Errorf("%s is not a social persona (purpose %s)", args[0], r.Base().Purpose)
			}

			theme := strings.TrimSpace(topicText)
			if theme == "" {
				url := feedURL
				if url == "" {
					url = a.cfg.Feed.URL
				}
				if url != "" {
					theme, err = latestTheme(cmd.Context(), url, a.cfg.Feed.Limit)
					if err != nil {
						return err
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), social.PostPrompt(theme))
			if theme != "" {
				a.status(message.KindSystem, "テーマ: "+theme)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topicText, "topic", "", "theme of the post")
	cmd.Flags().StringVar(&feedURL, "feed", "", "RSS feed to take the latest theme from")
	return cmd
}

func latestTheme(ctx context.Context, url string, limit int) (string, error) {
	topics, err := fetcher.NewRSSFetcher(url, limit, nil).Fetch(ctx)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return "", fmt.Errorf("feed %s has no items", url)
	}
	return topics[0].Theme(), nil
}

func generateCmd(getApp func() *app, cancel context.CancelFunc) *cobra.Command {
	var maxRuns int
	cmd := &cobra.Command{
		Use:   "generate [instruction]",
		Short: "Generate character sheets from natural-language instructions",
		Long: `自然言語の指示からキャラクターシートを一括生成して保存します。
指示を引数で渡すと1回だけ実行し、省略すると対話モードになります（終了: Ctrl+D）。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			ctx := cmd.Context()

			g, err := a.collaborator(ctx)
			if err != nil {
				return err
			}
			st, closeStore, err := a.store()
			if err != nil {
				return err
			}
			defer closeStore()

			l := &loop{
				pipeline: batch.NewPipeline(g, batch.WithLogger(a.logger)),
				store:    st,
				bus:      a.bus,
				out:      cmd.OutOrStdout(),
			}

			if len(args) > 0 {
				return l.handle(ctx, strings.Join(args, " "))
			}

			sup := supervisor.NewSupervisor(maxRuns, a.bus, cancel)
			sup.Start()
			return l.run(ctx, cmd.InOrStdin())
		},
	}
	cmd.Flags().IntVar(&maxRuns, "max-runs", 0, "stop after this many instructions (0 = unlimited)")
	return cmd
}
