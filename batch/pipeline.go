// Package batch は、外部生成器の出力からキャラクターシートを取り出し、
// 1件ずつ検証して集計します。1件の失敗で全体を失敗させません。
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sat8bit/charagen/llm"
	"github.com/sat8bit/charagen/persona"
)

var (
	fencedBlock  = regexp.MustCompile("(?s)```yaml\\s*(.*?)```")
	separatorRow = regexp.MustCompile(`(?m)^[ \t]*---[ \t]*\r?$`)
)

// Extract は、テキストからYAMLの断片を取り出します。
// ```yaml のフェンスがあればその中身だけを、なければ --- だけの行で区切った断片を返します。
func Extract(text string) []string {
	var segments []string
	if matches := fencedBlock.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		for _, m := range matches {
			if s := strings.TrimSpace(m[1]); s != "" {
				segments = append(segments, s)
			}
		}
		return segments
	}
	for _, part := range separatorRow.Split(text, -1) {
		if s := strings.TrimSpace(part); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Rejection は、検証に落ちた候補です。Ordinal は候補の中での1始まりの番号です。
type Rejection struct {
	Candidate string
	Ordinal   int
	Err       error
}

func (r Rejection) String() string {
	return fmt.Sprintf("#%d %q: %v", r.Ordinal, r.Candidate, r.Err)
}

// Result は、1回のバッチ処理の集計です。
type Result struct {
	Sheets     []*persona.CharacterSheet
	Rejections []Rejection
	// Discarded は、マッピングでない、または name を持たないために捨てた断片の数です。
	Discarded int
}

type Pipeline struct {
	llm    llm.LLM
	logger *slog.Logger
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline は、生成器 g を使うパイプラインを作成します。Process だけを使う場合 g は nil でも構いません。
func NewPipeline(g llm.LLM, opts ...Option) *Pipeline {
	p := &Pipeline{
		llm:    g,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate は、依頼文にマスター指示を付けて生成器を1回だけ呼び、結果を Process します。
func (p *Pipeline) Generate(ctx context.Context, request string) (*Result, error) {
	if p.llm == nil {
		return nil, errors.New("batch.Generate: no collaborator configured")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, errors.New("batch.Generate: request is empty")
	}

	p.logger.Info("requesting characters", "request", request)
	text, err := p.llm.Generate(ctx, ComposeInstruction(request))
	if err != nil {
		return nil, fmt.Errorf("batch.Generate: %w", err)
	}
	return p.Process(ctx, text)
}

// Process は、生成テキストを断片に分け、候補ごとに独立して検証します。
// 候補が1つもなければ *ExtractionError、候補がすべて不正なら *AllCandidatesInvalidError を返します。
func (p *Pipeline) Process(ctx context.Context, text string) (*Result, error) {
	segments := Extract(text)
	res := &Result{}

	candidates := 0
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := persona.ParseMapping([]byte(seg))
		if err != nil {
			res.Discarded++
			p.logger.Warn("discarding segment", "segment", i+1, "reason", err)
			continue
		}
		name, ok := m.Get("name")
		if !ok {
			res.Discarded++
			p.logger.Warn("discarding segment", "segment", i+1, "reason", "no name")
			continue
		}

		candidates++
		sheet, err := persona.NewSheet(m)
		if err != nil {
			r := Rejection{Candidate: candidateName(name), Ordinal: candidates, Err: err}
			res.Rejections = append(res.Rejections, r)
			p.logger.Warn("candidate rejected", "ordinal", r.Ordinal, "name", r.Candidate, "error", err)
			continue
		}
		res.Sheets = append(res.Sheets, sheet)
	}

	switch {
	case candidates == 0:
		return nil, &ExtractionError{Segments: len(segments)}
	case len(res.Sheets) == 0:
		return nil, &AllCandidatesInvalidError{Rejections: res.Rejections}
	}

	p.logger.Info("batch processed",
		"accepted", len(res.Sheets),
		"rejected", len(res.Rejections),
		"discarded", res.Discarded,
	)
	return res, nil
}

func candidateName(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
