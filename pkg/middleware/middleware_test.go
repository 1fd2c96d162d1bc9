package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sakshi281205/sleeppeddlers/pkg/middleware"
)

func TestApplyOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	sys := middleware.New()
	sys.Use(tag("outer"))
	sys.Use(tag("inner"))

	h := sys.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/status/x", nil))

	out := buf.String()
	if !strings.Contains(out, "status=202") {
		t.Errorf("log output missing status: %s", out)
	}
	if !strings.Contains(out, "uri=/api/status/x") {
		t.Errorf("log output missing uri: %s", out)
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "disabled passes through",
			cfg:        middleware.CORSConfig{Enabled: false, Origins: []string{"*"}},
			method:     http.MethodGet,
			origin:     "http://app.local",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     http.MethodGet,
			origin:     "http://app.local",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:       "listed origin echoed",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://app.local"}},
			method:     http.MethodGet,
			origin:     "http://app.local",
			wantStatus: http.StatusOK,
			wantOrigin: "http://app.local",
		},
		{
			name:       "preflight answered",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     http.MethodOptions,
			origin:     "http://app.local",
			wantStatus: http.StatusNoContent,
			wantOrigin: "*",
		},
		{
			name:       "unlisted preflight forbidden",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://app.local"}},
			method:     http.MethodOptions,
			origin:     "http://evil.local",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}

			req := httptest.NewRequest(tt.method, "/upload", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			middleware.CORS(&cfg)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
