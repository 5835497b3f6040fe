// Package routes declares HTTP routes as data, registers them on a ServeMux,
// and documents them in an OpenAPI spec.
package routes

import (
	"net/http"
	"regexp"

	"github.com/JaimeStill/depot/pkg/openapi"
)

// Route binds a method and pattern to a handler. OpenAPI is optional.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group nests routes under a shared prefix. Tags apply to every documented
// route in the group and its children.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux using method-qualified patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		register(mux, "", g)
	}
}

func register(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}

// wildcards like {key...} become plain OpenAPI path templates
var wildcard = regexp.MustCompile(`\{(\w+)\.\.\.\}`)

// Document adds every route carrying OpenAPI metadata to spec.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		document(spec, "", nil, g)
	}
}

func document(spec *openapi.Spec, parent string, tags []string, g Group) {
	prefix := parent + g.Prefix
	if len(g.Tags) > 0 {
		tags = g.Tags
	}

	for _, r := range g.Routes {
		if r.OpenAPI == nil {
			continue
		}
		op := *r.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		path := wildcard.ReplaceAllString(prefix+r.Pattern, "{$1}")
		if path == "" {
			path = "/"
		}
		spec.AddOperation(path, r.Method, &op)
	}
	for _, child := range g.Children {
		document(spec, prefix, tags, child)
	}
}
