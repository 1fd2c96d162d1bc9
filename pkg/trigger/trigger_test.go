package trigger_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewInvocation(t *testing.T) {
	inv, err := trigger.NewInvocation("classify", map[string]string{"job_id": "abc"})
	if err != nil {
		t.Fatalf("NewInvocation() error = %v", err)
	}
	if inv.Target != "classify" {
		t.Errorf("target = %q, want classify", inv.Target)
	}
	if string(inv.Payload) != `{"job_id":"abc"}` {
		t.Errorf("payload = %s", inv.Payload)
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := trigger.NewRegistry()

	var got string
	reg.Register("classify", func(_ context.Context, payload json.RawMessage) error {
		got = string(payload)
		return nil
	})

	if err := reg.Dispatch(context.Background(), trigger.Invocation{Target: "classify", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got != "{}" {
		t.Errorf("handler payload = %q", got)
	}

	err := reg.Dispatch(context.Background(), trigger.Invocation{Target: "missing"})
	if !errors.Is(err, trigger.ErrUnknownTarget) {
		t.Errorf("Dispatch(missing) error = %v, want ErrUnknownTarget", err)
	}

	if targets := reg.Targets(); len(targets) != 1 || targets[0] != "classify" {
		t.Errorf("Targets() = %v", targets)
	}
}

func TestSyncPropagatesHandlerError(t *testing.T) {
	reg := trigger.NewRegistry()
	boom := errors.New("boom")
	reg.Register("summarize", func(context.Context, json.RawMessage) error { return boom })

	err := trigger.Sync(reg).Fire(context.Background(), trigger.Invocation{Target: "summarize"})
	if !errors.Is(err, boom) {
		t.Errorf("Fire() error = %v, want boom", err)
	}
}

func TestLocalRunsInvocations(t *testing.T) {
	reg := trigger.NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[string]bool{}

	reg.Register("classify", func(_ context.Context, payload json.RawMessage) error {
		defer wg.Done()
		mu.Lock()
		seen[string(payload)] = true
		mu.Unlock()
		return nil
	})

	cfg := &trigger.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	lc := lifecycle.New()
	local := trigger.NewLocal(reg, cfg, discardLogger())
	local.Start(lc)
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}

	for _, p := range []string{`"a"`, `"b"`, `"c"`} {
		wg.Add(1)
		if err := local.Fire(context.Background(), trigger.Invocation{Target: "classify", Payload: []byte(p)}); err != nil {
			t.Fatalf("Fire() error = %v", err)
		}
	}
	wg.Wait()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("handled %d invocations, want 3", len(seen))
	}
}

func TestLocalFireFailures(t *testing.T) {
	reg := trigger.NewRegistry()
	reg.Register("classify", func(context.Context, json.RawMessage) error { return nil })

	// Never started, so nothing drains the queue.
	local := trigger.NewLocal(reg, &trigger.Config{Workers: 1, QueueSize: 1}, discardLogger())
	ctx := context.Background()

	if err := local.Fire(ctx, trigger.Invocation{Target: "unknown"}); !errors.Is(err, trigger.ErrUnknownTarget) {
		t.Errorf("unknown target error = %v", err)
	}
	if err := local.Fire(ctx, trigger.Invocation{Target: "classify"}); err != nil {
		t.Fatalf("first Fire() error = %v", err)
	}
	if err := local.Fire(ctx, trigger.Invocation{Target: "classify"}); !errors.Is(err, trigger.ErrQueueFull) {
		t.Errorf("second Fire() error = %v, want ErrQueueFull", err)
	}
}

func TestHTTPFire(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		if strings.HasSuffix(r.URL.Path, "/reject") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := &trigger.Config{Mode: trigger.ModeHTTP, Endpoint: srv.URL + "/api/invoke/"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	h := trigger.NewHTTP(cfg, discardLogger())

	inv := trigger.Invocation{Target: "summarize", Payload: []byte(`{"job_id":"x"}`)}
	if err := h.Fire(context.Background(), inv); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if gotPath != "/api/invoke/summarize" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != `{"job_id":"x"}` {
		t.Errorf("body = %q", gotBody)
	}

	err := h.Fire(context.Background(), trigger.Invocation{Target: "reject"})
	if !errors.Is(err, trigger.ErrUnexpectedStatus) {
		t.Errorf("Fire(reject) error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     trigger.Config
		wantErr string
	}{
		{"defaults", trigger.Config{}, ""},
		{"http without endpoint", trigger.Config{Mode: trigger.ModeHTTP}, "endpoint required"},
		{"unknown mode", trigger.Config{Mode: "sqs"}, "unknown mode"},
		{"bad timeout", trigger.Config{Timeout: "later"}, "invalid timeout"},
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

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_TRIGGER_MODE", "HTTP")
	t.Setenv("TEST_TRIGGER_ENDPOINT", "http://worker:8080/api/invoke")
	t.Setenv("TEST_TRIGGER_WORKERS", "8")

	cfg := trigger.Config{}
	err := cfg.Finalize(&trigger.Env{
		Mode:     "TEST_TRIGGER_MODE",
		Endpoint: "TEST_TRIGGER_ENDPOINT",
		Workers:  "TEST_TRIGGER_WORKERS",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Mode != trigger.ModeHTTP || cfg.Workers != 8 {
		t.Errorf("env not applied: %+v", cfg)
	}
}
