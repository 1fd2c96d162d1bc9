package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
)

func TestRegisterNestedGroups(t *testing.T) {
	var hit string
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hit = name + ":" + r.PathValue("id")
		}
	}

	group := routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: handler("status")},
		},
		Children: []routes.Group{
			{
				Prefix: "/results",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: handler("result")},
				},
			},
		},
	}

	want := []string{"GET /jobs/{id}", "GET /jobs/results/{id}"}
	if got := group.Patterns(); !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}

	mux := http.NewServeMux()
	routes.Register(mux, group)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/results/42", nil))
	if hit != "result:42" {
		t.Errorf("hit = %q, want result:42", hit)
	}
}
