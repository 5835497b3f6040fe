package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/depot/pkg/openapi"
	"github.com/JaimeStill/depot/pkg/routes"
)

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body + ":" + r.PathValue("id")))
	}
}

func testGroup() routes.Group {
	return routes.Group{
		Prefix: "/uploads",
		Tags:   []string{"Uploads"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: respond("upload"), OpenAPI: &openapi.Operation{Summary: "Upload"}},
			{Method: "GET", Pattern: "/internal", Handler: respond("internal")},
		},
		Children: []routes.Group{
			{
				Prefix: "/transfers",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: respond("find"), OpenAPI: &openapi.Operation{Summary: "Find"}},
					{Method: "GET", Pattern: "/files/{key...}", Handler: respond("file"), OpenAPI: &openapi.Operation{Summary: "File", Tags: []string{"Files"}}},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, testGroup())

	tests := []struct {
		method string
		path   string
		want   string
		code   int
	}{
		{method: http.MethodPost, path: "/uploads", want: "upload:", code: http.StatusOK},
		{method: http.MethodGet, path: "/uploads/transfers/42", want: "find:42", code: http.StatusOK},
		{method: http.MethodGet, path: "/uploads", code: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/missing", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.code {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.code)
			}
			if tt.want != "" && rec.Body.String() != tt.want {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Test"}, "1.0.0")
	routes.Document(spec, testGroup())

	if len(spec.Paths) != 3 {
		t.Fatalf("paths: got %d, want 3", len(spec.Paths))
	}
	if _, ok := spec.Paths["/uploads/internal"]; ok {
		t.Error("undocumented route was added")
	}

	find := spec.Paths["/uploads/transfers/{id}"]
	if find == nil || find.Get == nil || find.Get.Summary != "Find" {
		t.Fatalf("find operation missing: %+v", find)
	}
	if len(find.Get.Tags) != 1 || find.Get.Tags[0] != "Uploads" {
		t.Errorf("inherited tags: got %v", find.Get.Tags)
	}

	file := spec.Paths["/uploads/transfers/files/{key}"]
	if file == nil || file.Get == nil {
		t.Fatal("wildcard path not normalized")
	}
	if file.Get.Tags[0] != "Files" {
		t.Errorf("explicit tags overwritten: %v", file.Get.Tags)
	}

	if spec.Paths["/uploads"].Post == nil {
		t.Error("post operation missing")
	}
}
