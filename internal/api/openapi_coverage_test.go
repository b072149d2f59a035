package api_test

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	specpkg "github.com/automarket/automarket/api"
	"github.com/automarket/automarket/internal/api"
)

// openAPISpec is the minimal structure needed to extract paths from the document.
type openAPISpec struct {
	Paths map[string]map[string]any `json:"paths"`
}

type route struct {
	method string
	path   string
}

func TestOpenAPISpec_RoutesCoverAllPaths(t *testing.T) {
	t.Parallel()

	specJSON, err := yaml.YAMLToJSON(specpkg.OpenAPISpec)
	require.NoError(t, err, "embedded document must convert to JSON")

	var spec openAPISpec
	require.NoError(t, yaml.Unmarshal(specJSON, &spec))

	specRoutes := extractSpecRoutes(spec)
	require.NotEmpty(t, specRoutes)

	// Handlers are never invoked, so the remaining deps can stay nil.
	router := api.NewRouter(api.RouterDeps{OpenAPISpec: specpkg.OpenAPISpec})

	chiRoutes := extractChiRoutes(t, router)
	require.NotEmpty(t, chiRoutes)

	for _, sr := range specRoutes {
		t.Run(fmt.Sprintf("spec_%s_%s_has_Chi_route", sr.method, sr.path), func(t *testing.T) {
			assert.Contains(t, chiRoutes, sr, "documented route %s %s is not served", sr.method, sr.path)
		})
	}

	for _, cr := range chiRoutes {
		t.Run(fmt.Sprintf("Chi_%s_%s_has_spec_path", cr.method, cr.path), func(t *testing.T) {
			assert.Contains(t, specRoutes, cr, "served route %s %s is not documented", cr.method, cr.path)
		})
	}
}

func extractSpecRoutes(spec openAPISpec) []route {
	var routes []route
	for path, methods := range spec.Paths {
		for method := range methods {
			routes = append(routes, route{method: strings.ToUpper(method), path: path})
		}
	}
	sortRoutes(routes)
	return routes
}

func extractChiRoutes(t *testing.T, r *chi.Mux) []route {
	t.Helper()
	var routes []route
	walkFunc := func(method, routePath string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		normalized := strings.TrimRight(routePath, "/")
		if normalized == "" {
			normalized = "/"
		}
		routes = append(routes, route{method: method, path: normalized})
		return nil
	}
	require.NoError(t, chi.Walk(r, walkFunc))
	sortRoutes(routes)
	return routes
}

func sortRoutes(routes []route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].path == routes[j].path {
			return routes[i].method < routes[j].method
		}
		return routes[i].path < routes[j].path
	})
}
