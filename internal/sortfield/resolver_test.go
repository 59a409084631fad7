package sortfield

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/kailas-cloud/solrkeys/internal/domain"
)

var candidates = map[string][]string{
	"search_api_random":    {"random"},
	"search_api_relevance": {"score"},
	"title":                {"tm_title", "tm_X3b_en_title"},
	"name":                 {"ss_name"},
	"tags":                 {"sm_tags"},
	"count":                {"itm_count"},
	"created":              {"ds_created"},
	"spell":                {"spellcheck_und"},
	"suggest":              {"twm_suggest"},
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		field string
		q     Query
		want  string
	}{
		{"random with generated seed", "search_api_random", Query{}, "random_42"},
		{"random with query seed", "search_api_random", Query{RandomSeed: "7"}, "random_7"},
		{"relevance unchanged", "search_api_relevance", Query{}, "score"},
		{"fulltext first language", "title", Query{Languages: []string{"de", "en"}}, "sort_X3b_de_title"},
		{"string without language", "name", Query{}, "sort_X3b__name"},
		{"blank first language kept", "name", Query{Languages: []string{"", "fr"}}, "sort_X3b__name"},
		{"multi-valued string", "tags", Query{Languages: []string{"en"}}, "sort_X3b_en_tags"},
		{"multi-valued integer", "count", Query{}, "its_count"},
		{"single-valued date", "created", Query{}, "ds_created"},
	}

	r := New().WithSeedSource(func() string { return "42" })
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.field, candidates, false, tc.q)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestResolve_JustDocumentDatasource(t *testing.T) {
	for _, field := range []string{"title", "count", "spell", "search_api_random"} {
		got, err := New().Resolve(field, candidates, true, Query{})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", field, err)
		}
		if want := candidates[field][0]; got != want {
			t.Errorf("Resolve(%q) = %q, want %q", field, got, want)
		}
	}
}

func TestResolve_Unsupported(t *testing.T) {
	for _, field := range []string{"spell", "suggest", "missing"} {
		t.Run(field, func(t *testing.T) {
			_, err := New().Resolve(field, candidates, false, Query{})
			if !errors.Is(err, domain.ErrSortUnsupported) {
				t.Errorf("expected ErrSortUnsupported, got %v", err)
			}
		})
	}
}

func TestResolve_DefaultSeed(t *testing.T) {
	got, err := New().Resolve("search_api_random", candidates, false, Query{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	seed, ok := strings.CutPrefix(got, "random_")
	if !ok {
		t.Fatalf("Resolve = %q, want random_ prefix", got)
	}
	if n, err := strconv.Atoi(seed); err != nil || n < 0 {
		t.Errorf("seed %q is not a non-negative integer", seed)
	}
}

func TestWithSeedSource_NilKeepsDefault(t *testing.T) {
	r := New().WithSeedSource(nil)
	if r.seed == nil {
		t.Fatal("seed source must not be nil")
	}
}
