package compile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/solrkeys/internal/datatype"
	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	"github.com/kailas-cloud/solrkeys/internal/flatten"
	"github.com/kailas-cloud/solrkeys/internal/logger"
	"github.com/kailas-cloud/solrkeys/internal/metrics"
	"github.com/kailas-cloud/solrkeys/internal/sortfield"
)

// --- Mocks ---

type mockFlattener struct {
	query    string
	err      error
	lastMode parsemode.Mode
	calls    int
}

func (m *mockFlattener) Flatten(_ keys.Child, _ []string, mode parsemode.Mode) (string, error) {
	m.calls++
	m.lastMode = mode
	return m.query, m.err
}

func (m *mockFlattener) PayloadScore(_ keys.Child, mode parsemode.Mode) (string, error) {
	m.calls++
	m.lastMode = mode
	return m.query, m.err
}

type mockResolver struct {
	candidates   map[string][]string
	justDocument bool
	q            sortfield.Query
}

func (m *mockResolver) Resolve(
	name string, candidates map[string][]string, justDocument bool, q sortfield.Query,
) (string, error) {
	m.candidates = candidates
	m.justDocument = justDocument
	m.q = q
	if len(candidates[name]) == 0 {
		return "", domain.ErrSortUnsupported
	}
	return candidates[name][0], nil
}

func newService() *Service {
	return New(flatten.New().WithEscaper(flatten.Verbatim), sortfield.New(), datatype.New(nil))
}

// --- Tests ---

func TestFlatten_DefaultMode(t *testing.T) {
	f := &mockFlattener{query: "q"}
	svc := New(f, &mockResolver{}, datatype.New(nil)).WithDefaultMode(parsemode.Terms)

	got, err := svc.Flatten(context.Background(), FlattenRequest{Keys: keys.Subtree(keys.Terms("a"))})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got != "q" || f.lastMode != parsemode.Terms {
		t.Errorf("got %q with mode %q", got, f.lastMode)
	}
}

func TestWithDefaultMode_IgnoresInvalid(t *testing.T) {
	svc := newService().WithDefaultMode("fuzzy")
	if svc.DefaultMode() != parsemode.Phrase {
		t.Errorf("DefaultMode = %q, want phrase", svc.DefaultMode())
	}
}

func TestFlatten_Compiles(t *testing.T) {
	got, err := newService().Flatten(context.Background(), FlattenRequest{
		Keys:   keys.Subtree(keys.Terms("A", "B")),
		Fields: []string{"x", "y"},
		Mode:   parsemode.Edismax,
	})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if want := "+({!edismax qf='x y'}+A +B)"; got != want {
		t.Errorf("Flatten = %q, want %q", got, want)
	}
}

func TestFlatten_UnknownMode(t *testing.T) {
	f := &mockFlattener{}
	svc := New(f, &mockResolver{}, datatype.New(nil))

	_, err := svc.Flatten(context.Background(), FlattenRequest{Keys: keys.Subtree(keys.Terms()), Mode: "fuzzy"})
	if !errors.Is(err, domain.ErrIncompatibleParseMode) {
		t.Fatalf("expected ErrIncompatibleParseMode, got %v", err)
	}
	if f.calls != 0 {
		t.Error("flattener must not be called for an unknown mode")
	}
}

func TestFlatten_ErrorWrappedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	_, err := newService().Flatten(ctx, FlattenRequest{
		Keys:   keys.Subtree(keys.Terms("A")),
		Fields: []string{"x"},
		Mode:   parsemode.Keys,
	})
	if !errors.Is(err, domain.ErrModeFieldMismatch) {
		t.Fatalf("expected ErrModeFieldMismatch, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "flatten keys: ") {
		t.Errorf("error = %q", err)
	}

	entries := logs.FilterMessage("compile failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if kind := entries[0].ContextMap()["kind"]; kind != "mode_field_mismatch" {
		t.Errorf("kind = %v", kind)
	}
}

func TestPayloadScore(t *testing.T) {
	svc := newService()

	got, err := svc.PayloadScore(context.Background(), keys.Subtree(keys.Terms("ab", "c")), "")
	if err != nil {
		t.Fatalf("PayloadScore: %v", err)
	}
	if want := " {!payload_score f=boost_term v=ab func=max}"; got != want {
		t.Errorf("PayloadScore = %q, want %q", got, want)
	}

	_, err = svc.PayloadScore(context.Background(), keys.Subtree(keys.Terms("ab")), parsemode.Keys)
	if !errors.Is(err, domain.ErrIncompatibleParseMode) {
		t.Errorf("expected ErrIncompatibleParseMode, got %v", err)
	}
}

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name string
		req  SortRequest
		want string
	}{
		{
			"explicit candidates",
			SortRequest{Field: "title", Candidates: []string{"tm_title"}, Languages: []string{"en"}},
			"sort_X3b_en_title",
		},
		{
			"candidate from data type",
			SortRequest{Field: "count", DataType: "integer", MultiValued: true},
			"its_count",
		},
		{
			"document datasource",
			SortRequest{Field: "count", Candidates: []string{"itm_count"}, Datasources: []string{"solr_document"}},
			"itm_count",
		},
		{
			"random seed",
			SortRequest{Field: "search_api_random", Candidates: []string{"random"}, RandomSeed: "9"},
			"random_9",
		},
	}

	svc := newService()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ResolveSort(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("ResolveSort: %v", err)
			}
			if got != tc.want {
				t.Errorf("ResolveSort = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveSort_PassesIndexAndQuery(t *testing.T) {
	r := &mockResolver{}
	svc := New(&mockFlattener{}, r, datatype.New(nil))

	_, err := svc.ResolveSort(context.Background(), SortRequest{
		Field:       "title",
		Candidates:  []string{"tm_title"},
		Datasources: []string{"solr_document"},
		Languages:   []string{"de"},
		RandomSeed:  "1",
	})
	if err != nil {
		t.Fatalf("ResolveSort: %v", err)
	}
	if !r.justDocument {
		t.Error("expected just-document index")
	}
	if r.q.RandomSeed != "1" || len(r.q.Languages) != 1 || r.q.Languages[0] != "de" {
		t.Errorf("query = %+v", r.q)
	}
	if got := r.candidates["title"]; len(got) != 1 || got[0] != "tm_title" {
		t.Errorf("candidates = %v", r.candidates)
	}
}

func TestResolveSort_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  SortRequest
		want error
	}{
		{"spellcheck", SortRequest{Field: "spell", Candidates: []string{"spellcheck_und"}}, domain.ErrSortUnsupported},
		{"no candidates", SortRequest{Field: "title"}, domain.ErrSortUnsupported},
		{"unknown type", SortRequest{Field: "price", DataType: "money"}, domain.ErrUnknownDataType},
	}

	svc := newService()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolveSort(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFieldNames(t *testing.T) {
	for _, size := range []int{0, 16} {
		svc := newService().WithNameCache(size)

		// Twice so the second pass is served from the cache when enabled.
		for range 2 {
			enc := svc.EncodeNames([]string{"tm_entity:node/body", "title"})
			if enc[0] != "tm_entity_X3a_node_X2f_body" || enc[1] != "title" {
				t.Errorf("size %d: EncodeNames = %v", size, enc)
			}
			if dec := svc.DecodeNames(enc); dec[0] != "tm_entity:node/body" {
				t.Errorf("size %d: DecodeNames = %v", size, dec)
			}
			lang := svc.LanguageNames([]string{"tm_title", "twm_suggest"}, "en")
			if lang[0] != "tm;en_title" || lang[1] != "twm_suggest" {
				t.Errorf("size %d: LanguageNames = %v", size, lang)
			}
			if de := svc.LanguageNames([]string{"tm_title"}, "de"); de[0] != "tm;de_title" {
				t.Errorf("size %d: cache mixed languages: %v", size, de)
			}
			if gen := svc.GenericNames(lang); gen[0] != "tm_title" {
				t.Errorf("size %d: GenericNames = %v", size, gen)
			}
		}
	}
}

func TestNormalizeRows(t *testing.T) {
	if got := newService().NormalizeRows(1000); got != 1024 {
		t.Errorf("NormalizeRows(1000) = %d", got)
	}
}

func TestFlatten_UnknownModesShareOneSeries(t *testing.T) {
	svc := newService()
	k := keys.Subtree(keys.Terms("a"))
	before := testutil.CollectAndCount(metrics.CompileTotal)

	for i := range 50 {
		mode := parsemode.Mode(fmt.Sprintf("junk-%d", i))
		if _, err := svc.Flatten(context.Background(), FlattenRequest{Keys: k, Mode: mode}); err == nil {
			t.Fatalf("expected error for mode %q", mode)
		}
		if _, err := svc.PayloadScore(context.Background(), k, mode); err == nil {
			t.Fatalf("expected error for mode %q", mode)
		}
	}

	// At most one unknown series per operation.
	if added := testutil.CollectAndCount(metrics.CompileTotal) - before; added > 2 {
		t.Errorf("compile_total gained %d series, want at most 2", added)
	}
	got := testutil.ToFloat64(metrics.CompileTotal.WithLabelValues(
		metrics.OpFlatten, metrics.ModeUnknown, "incompatible_parse_mode"))
	if got < 50 {
		t.Errorf("unknown mode counter = %v, want >= 50", got)
	}
}

func TestCompile_RecordsNoMetrics(t *testing.T) {
	svc := newService()
	counter := metrics.CompileTotal.WithLabelValues(metrics.OpFlatten, string(parsemode.Direct), "ok")
	before := testutil.ToFloat64(counter)

	q, err := svc.Compile(FlattenRequest{Keys: keys.Term("*:*"), Fields: []string{"id"}, Mode: parsemode.Direct})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if q != "id:(*:*)" {
		t.Errorf("Compile = %q", q)
	}
	if after := testutil.ToFloat64(counter); after != before {
		t.Errorf("direct ok counter moved from %v to %v", before, after)
	}
}
