package summarization

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates summaries with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, cfg *Config) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Gemini.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Gemini.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
			Temperature:       genai.Ptr(float32(cfg.Temperature)),
			TopP:              genai.Ptr(float32(cfg.TopP)),
			MaxOutputTokens:   int32(cfg.MaxTokens),
		},
	}, nil
}

func (g *Gemini) Name() string {
	return g.model
}

func (g *Gemini) Generate(ctx context.Context, prompt string) Outcome {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		g.config,
	)
	if err != nil {
		return Failure(fmt.Sprintf("generate: %v", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Failure("empty response")
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return Failure("empty response")
	}
	return Success(text)
}
