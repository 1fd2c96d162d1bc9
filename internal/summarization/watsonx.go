package summarization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// apiKeyGrant is the IAM grant that exchanges an API key for a bearer token.
const apiKeyGrant = "urn:ibm:params:oauth:grant-type:apikey"

// Watsonx calls the watsonx.ai chat endpoint. Bearer tokens come from an
// API-key exchange and are cached until expiry by the oauth2 transport.
type Watsonx struct {
	client    *http.Client
	endpoint  string
	model     string
	projectID string
	params    chatParams
}

type chatParams struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	ModelID   string        `json:"model_id"`
	ProjectID string        `json:"project_id"`
	Messages  []chatMessage `json:"messages"`
	chatParams
}

// chatResponse covers the chat, text generation, and legacy output shapes.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (r *chatResponse) text() string {
	switch {
	case len(r.Choices) > 0:
		return r.Choices[0].Message.Content
	case len(r.Results) > 0:
		return r.Results[0].GeneratedText
	case len(r.Output) > 0 && len(r.Output[0].Content) > 0:
		return r.Output[0].Content[0].Text
	}
	return ""
}

// NewWatsonx builds a client from cfg. base is the transport used for both
// the token exchange and inference; nil uses http.DefaultTransport.
func NewWatsonx(cfg *Config, base http.RoundTripper) *Watsonx {
	if base == nil {
		base = http.DefaultTransport
	}

	creds := clientcredentials.Config{
		TokenURL:  cfg.Watsonx.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"grant_type": {apiKeyGrant},
			"apikey":     {cfg.Watsonx.APIKey},
		},
	}

	timeout := cfg.TimeoutDuration()
	tokenCtx := context.WithValue(
		context.Background(),
		oauth2.HTTPClient,
		&http.Client{Transport: base, Timeout: timeout},
	)

	endpoint := fmt.Sprintf(
		"%s/ml/v1/text/chat?version=%s",
		strings.TrimRight(cfg.Watsonx.BaseURL, "/"),
		url.QueryEscape(cfg.Watsonx.Version),
	)

	return &Watsonx{
		client: &http.Client{
			Transport: &oauth2.Transport{Source: creds.TokenSource(tokenCtx), Base: base},
			Timeout:   timeout,
		},
		endpoint:  endpoint,
		model:     cfg.Model,
		projectID: cfg.Watsonx.ProjectID,
		params: chatParams{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		},
	}
}

func (w *Watsonx) Name() string {
	return w.model
}

func (w *Watsonx) Generate(ctx context.Context, prompt string) Outcome {
	body, err := json.Marshal(chatRequest{
		ModelID:   w.model,
		ProjectID: w.projectID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		chatParams: w.params,
	})
	if err != nil {
		return Failure(fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return Failure(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Failure(fmt.Sprintf("read response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return Failure(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Failure(fmt.Sprintf("decode response: %v", err))
	}

	text := strings.TrimSpace(parsed.text())
	if text == "" {
		return Failure("empty response")
	}
	return Success(text)
}
