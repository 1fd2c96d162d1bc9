package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sakshi281205/sleeppeddlers/pkg/module"
)

func TestRouterDispatchesByPrefix(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /status/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("status:" + r.PathValue("job_id")))
	})
	inner.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("root"))
	})

	m := module.New("/api", inner)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		path       string
		wantBody   string
		wantModule bool
	}{
		{"/api/status/abc", "status:abc", true},
		{"/api/status/abc/", "status:abc", true},
		{"/api", "root", true},
		{"/healthz", "ok", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if got := rec.Header().Get("X-Module") == "api"; got != tt.wantModule {
				t.Errorf("module middleware applied = %v, want %v", got, tt.wantModule)
			}
		})
	}
}

func TestNewRejectsInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestMountDuplicatePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("second mount at /api should panic")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
