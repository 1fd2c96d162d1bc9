package summarization_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/summarization"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func analysis(findings string) *jobs.AnalysisDocument {
	return &jobs.AnalysisDocument{
		JobID: "abc",
		AIAnalysis: jobs.Analysis{
			Findings:       findings,
			Confidence:     0.81,
			ImageKey:       "uploads/abc",
			ModelVersion:   "v0.1-stub",
			ProcessingTime: "0.30 seconds",
		},
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		findings string
		want     string
	}{
		{"urgent_finding", summarization.HighSeverityTemplate},
		{"Intracranial HEMORRHAGE", summarization.HighSeverityTemplate},
		{"URGENT", summarization.HighSeverityTemplate},
		{"normal", summarization.LowSeverityTemplate},
		{"potential_abnormality", summarization.LowSeverityTemplate},
		{"unknown", summarization.LowSeverityTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.findings, func(t *testing.T) {
			if got := summarization.Fallback(analysis(tt.findings)); got != tt.want {
				t.Errorf("Fallback() = %q", got)
			}
		})
	}
}

func TestFallbackIgnoresOtherFields(t *testing.T) {
	doc := analysis("normal")
	doc.AIAnalysis.ImageKey = "uploads/urgent-hemorrhage"
	if got := summarization.Fallback(doc); got != summarization.LowSeverityTemplate {
		t.Error("only findings should select the template")
	}
}

func TestBuildPromptEmbedsAnalysis(t *testing.T) {
	prompt := summarization.BuildPrompt(analysis("normal"))
	for _, want := range []string{
		`"findings":"normal"`,
		"KEY FINDINGS",
		"CLINICAL SIGNIFICANCE",
		"RECOMMENDED ACTIONS",
		"FOLLOW-UP",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

type staticModel struct {
	out summarization.Outcome
}

func (m staticModel) Name() string { return "test/model" }

func (m staticModel) Generate(context.Context, string) summarization.Outcome { return m.out }

func TestSummarizerOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		model     summarization.Model
		findings  string
		wantText  string
		wantModel string
	}{
		{
			name:      "model success",
			model:     staticModel{summarization.Success("KEY FINDINGS: clear.")},
			findings:  "urgent_finding",
			wantText:  "KEY FINDINGS: clear.",
			wantModel: "test/model",
		},
		{
			name:      "model failure urgent",
			model:     staticModel{summarization.Failure("status 500")},
			findings:  "urgent_finding",
			wantText:  summarization.HighSeverityTemplate,
			wantModel: "fallback_template",
		},
		{
			name:      "unconfigured",
			model:     summarization.NoModel{},
			findings:  "normal",
			wantText:  summarization.LowSeverityTemplate,
			wantModel: "fallback_template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summarization.NewSummarizer(tt.model, time.Second, discardLogger())
			got := s.Summarize(context.Background(), analysis(tt.findings))
			if got.Text != tt.wantText || got.ModelUsed != tt.wantModel {
				t.Errorf("got %q/%q, want %q/%q", got.Text, got.ModelUsed, tt.wantText, tt.wantModel)
			}
			if got.GeneratedAt.IsZero() {
				t.Error("generated_at not set")
			}
		})
	}
}

type fakeWatsonx struct {
	*httptest.Server
	tokens   atomic.Int32
	chatCode int
	chatBody string
	delay    time.Duration

	mu       sync.Mutex
	lastReq  map[string]any
	lastAuth string
}

func (f *fakeWatsonx) last() (map[string]any, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq, f.lastAuth
}

func newFakeWatsonx(t *testing.T, code int, body string) *fakeWatsonx {
	t.Helper()
	f := &fakeWatsonx{chatCode: code, chatBody: body}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "urn:ibm:params:oauth:grant-type:apikey" || r.PostForm.Get("apikey") != "key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.tokens.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("POST /ml/v1/text/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.lastReq = req
		f.mu.Unlock()
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(f.chatCode)
		w.Write([]byte(f.chatBody))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeWatsonx) config(t *testing.T) *summarization.Config {
	t.Helper()
	cfg := &summarization.Config{
		Provider: summarization.ProviderWatsonx,
		Timeout:  "2s",
		Watsonx: summarization.WatsonxConfig{
			APIKey:    "key-123",
			ProjectID: "proj-1",
			BaseURL:   f.URL,
			TokenURL:  f.URL + "/identity/token",
		},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestWatsonxGenerate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"chat shape", `{"choices":[{"message":{"role":"assistant","content":" KEY FINDINGS: ok. "}}]}`, "KEY FINDINGS: ok."},
		{"generation shape", `{"results":[{"generated_text":"KEY FINDINGS: gen."}]}`, "KEY FINDINGS: gen."},
		{"output shape", `{"output":[{"content":[{"text":"KEY FINDINGS: out."}]}]}`, "KEY FINDINGS: out."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWatsonx(t, http.StatusOK, tt.body)
			m := summarization.NewWatsonx(f.config(t), nil)

			out := m.Generate(context.Background(), "prompt")
			if !out.OK || out.Text != tt.want {
				t.Fatalf("Generate() = %+v", out)
			}
			req, auth := f.last()
			if auth != "Bearer tok-1" {
				t.Errorf("authorization = %q", auth)
			}
			if req["model_id"] != "ibm/granite-13b-chat-v2" || req["project_id"] != "proj-1" {
				t.Errorf("request = %v", req)
			}
			if req["max_tokens"] != float64(250) || req["temperature"] != 0.3 || req["top_p"] != 0.9 {
				t.Errorf("decoding parameters = %v", req)
			}
		})
	}
}

func TestWatsonxReusesToken(t *testing.T) {
	f := newFakeWatsonx(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	m := summarization.NewWatsonx(f.config(t), nil)

	for range 3 {
		m.Generate(context.Background(), "prompt")
	}
	if got := f.tokens.Load(); got != 1 {
		t.Errorf("token exchanges = %d, want 1", got)
	}
}

func TestWatsonxFailures(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		body   string
		reason string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "status 500"},
		{"bad json", http.StatusOK, `not json`, "decode response"},
		{"empty", http.StatusOK, `{"choices":[]}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWatsonx(t, tt.code, tt.body)
			out := summarization.NewWatsonx(f.config(t), nil).Generate(context.Background(), "prompt")
			if out.OK || !strings.Contains(out.Reason, tt.reason) {
				t.Errorf("Generate() = %+v, want failure %q", out, tt.reason)
			}
		})
	}
}

func TestWatsonxTokenRejected(t *testing.T) {
	f := newFakeWatsonx(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	cfg := f.config(t)
	cfg.Watsonx.APIKey = "wrong"

	out := summarization.NewWatsonx(cfg, nil).Generate(context.Background(), "prompt")
	if out.OK {
		t.Error("rejected token exchange should fail")
	}
}

func TestSummarizerTimeoutFallsBack(t *testing.T) {
	f := newFakeWatsonx(t, http.StatusOK, `{"choices":[{"message":{"content":"late"}}]}`)
	f.delay = time.Second

	s := summarization.NewSummarizer(summarization.NewWatsonx(f.config(t), nil), 50*time.Millisecond, discardLogger())
	got := s.Summarize(context.Background(), analysis("urgent_finding"))

	if !got.Fallback() || got.Text != summarization.HighSeverityTemplate {
		t.Errorf("got %+v, want high-severity fallback", got)
	}
}

func TestStageWritesResult(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory("triage")
	store := jobs.NewStore(mem)
	store.PutAnalysis(ctx, analysis("urgent_finding"))

	stage := summarization.NewStage(
		store,
		summarization.NewSummarizer(summarization.NoModel{}, time.Second, discardLogger()),
		discardLogger(),
		nil,
	)

	doc, err := stage.Run(ctx, events.SummarizeRequest{
		Bucket:       "triage",
		AIResultsKey: "ai-results/abc.json",
		JobKey:       "jobs/abc.json",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stored, err := store.GetResult(ctx, "abc")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if stored.ModelUsed != "fallback_template" || stored.ClinicalSummary != summarization.HighSeverityTemplate {
		t.Errorf("stored = %+v", stored)
	}
	if stored.AIAnalysis != *analysis("urgent_finding") {
		t.Errorf("ai_analysis = %+v", stored.AIAnalysis)
	}
	if doc.JobID != "abc" {
		t.Errorf("job_id = %s", doc.JobID)
	}
}

func TestStageJobIDFallback(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(storage.NewMemory("triage"))
	store.PutAnalysis(ctx, analysis("normal"))

	stage := summarization.NewStage(store,
		summarization.NewSummarizer(summarization.NoModel{}, 0, discardLogger()), discardLogger(), nil)

	if _, err := stage.Run(ctx, events.SummarizeRequest{AIResultsKey: "ai-results/abc.json", JobKey: "elsewhere", JobID: "abc"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := store.GetResult(ctx, "abc"); err != nil {
		t.Errorf("result not written under job_id: %v", err)
	}
}

func TestStageMissingAnalysis(t *testing.T) {
	store := jobs.NewStore(storage.NewMemory("triage"))
	stage := summarization.NewStage(store,
		summarization.NewSummarizer(summarization.NoModel{}, 0, discardLogger()), discardLogger(), nil)

	_, err := stage.Run(context.Background(), events.SummarizeRequest{AIResultsKey: "ai-results/none.json", JobKey: "jobs/none.json"})
	if err == nil {
		t.Fatal("expected error for missing analysis")
	}
	if _, err := store.GetResult(context.Background(), "none"); err == nil {
		t.Error("no result should be written")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     summarization.Config
		wantErr string
	}{
		{"defaults", summarization.Config{}, ""},
		{"watsonx missing key", summarization.Config{Provider: "watsonx"}, "api_key and project_id required"},
		{"gemini missing key", summarization.Config{Provider: "gemini"}, "api_key required"},
		{"unknown provider", summarization.Config{Provider: "llama"}, "unknown provider"},
		{"bad timeout", summarization.Config{Timeout: "soon"}, "invalid timeout"},
		{"top_p out of range", summarization.Config{TopP: 1.5}, "top_p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEnvSelectsProvider(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "WATSONX")
	t.Setenv("TEST_KEY", "k")
	t.Setenv("TEST_PROJECT", "p")

	cfg := summarization.Config{}
	err := cfg.Finalize(&summarization.Env{
		Provider:         "TEST_PROVIDER",
		WatsonxAPIKey:    "TEST_KEY",
		WatsonxProjectID: "TEST_PROJECT",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Model != "ibm/granite-13b-chat-v2" || cfg.Watsonx.Version != "2023-05-29" {
		t.Errorf("watsonx defaults not applied: %+v", cfg)
	}
}
