package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// NewGemini は、Vertex AI 経由の Gemini クライアントを作成します。
func NewGemini(ctx context.Context, projectId, location, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectId,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm.NewGemini: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Gemini{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// 指示はすべて1つのユーザー発話として渡す
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	var temp float32 = 0.9
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		kind := KindFailure
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return "", &CollaboratorExecutionError{Backend: "gemini", Kind: kind, Err: err}
	}

	return extractText(resp), nil
}

func extractText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 {
		return ""
	}
	// 最も確度が高い候補のテキスト部分を連結する
	var text string
	if c := res.Candidates[0].Content; c != nil {
		for _, p := range c.Parts {
			text += p.Text
		}
	}
	if text != "" {
		return text
	}
	for _, c := range res.Candidates[1:] {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

var _ LLM = &Gemini{}
