package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/JaimeStill/depot/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		search   string
		sorts    int
	}{
		{name: "defaults", query: "", page: 1, pageSize: 20},
		{name: "explicit", query: "page=3&page_size=5&search=csv&sort=-TransferredAt", page: 3, pageSize: 5, search: "csv", sorts: 1},
		{name: "clamped", query: "page=-2&page_size=1000", page: 1, pageSize: 100},
		{name: "garbage", query: "page=abc&page_size=xyz", page: 1, pageSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("page/size: got %d/%d, want %d/%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			if tt.search == "" && req.Search != nil {
				t.Errorf("search: got %q, want nil", *req.Search)
			}
			if tt.search != "" && (req.Search == nil || *req.Search != tt.search) {
				t.Errorf("search: got %v, want %s", req.Search, tt.search)
			}
			if len(req.Sort) != tt.sorts {
				t.Errorf("sort: got %v", req.Sort)
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	var req pagination.PageRequest
	if err := json.Unmarshal([]byte(`{"sort":"FileName,-TransferredAt"}`), &req); err != nil {
		t.Fatal(err)
	}
	if len(req.Sort) != 2 || !req.Sort[1].Descending {
		t.Errorf("string form: got %+v", req.Sort)
	}

	if err := json.Unmarshal([]byte(`{"sort":[{"field":"Bucket","descending":true}]}`), &req); err != nil {
		t.Fatal(err)
	}
	if len(req.Sort) != 1 || req.Sort[0].Field != "Bucket" || !req.Sort[0].Descending {
		t.Errorf("array form: got %+v", req.Sort)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total, size, pages int
	}{
		{total: 0, size: 20, pages: 1},
		{total: 20, size: 20, pages: 1},
		{total: 21, size: 20, pages: 2},
		{total: 95, size: 10, pages: 10},
	}

	for _, tt := range tests {
		r := pagination.NewPageResult[int](nil, tt.total, 1, tt.size)
		if r.TotalPages != tt.pages {
			t.Errorf("total=%d size=%d: got %d pages, want %d", tt.total, tt.size, r.TotalPages, tt.pages)
		}
		if r.Data == nil {
			t.Error("data should never be nil")
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_MAX_PAGE", "50")

	c := pagination.Config{}
	if err := c.Finalize(&pagination.ConfigEnv{MaxPageSize: "TEST_MAX_PAGE"}); err != nil {
		t.Fatal(err)
	}
	if c.DefaultPageSize != 20 || c.MaxPageSize != 50 {
		t.Errorf("got %+v", c)
	}

	bad := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected default > max to fail")
	}
}
