package compile

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/domain/index"
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	"github.com/kailas-cloud/solrkeys/internal/domain/rows"
	"github.com/kailas-cloud/solrkeys/internal/fieldname"
	"github.com/kailas-cloud/solrkeys/internal/logger"
	"github.com/kailas-cloud/solrkeys/internal/metrics"
	"github.com/kailas-cloud/solrkeys/internal/sortfield"
)

// Field name transforms, used as metric mode labels and cache key prefixes.
const (
	TransformEncode   = "encode"
	TransformDecode   = "decode"
	TransformLanguage = "language"
	TransformGeneric  = "generic"
)

// FlattenRequest describes one key tree compilation.
type FlattenRequest struct {
	Keys   keys.Child
	Fields []string
	// Mode falls back to the service default when empty.
	Mode parsemode.Mode
}

// SortRequest describes one sort field resolution. Candidates win over
// DataType; with neither the field cannot be sorted.
type SortRequest struct {
	Field       string
	Candidates  []string
	DataType    string
	MultiValued bool
	Datasources []string
	Languages   []string
	RandomSeed  string
}

// Service orchestrates query compilation with logging and metrics.
type Service struct {
	flattener   Flattener
	sorter      SortResolver
	types       TypeRegistry
	defaultMode parsemode.Mode
	names       *lru.Cache[string, string]
}

// New creates a compile service using the phrase parse mode by default.
func New(flattener Flattener, sorter SortResolver, types TypeRegistry) *Service {
	return &Service{
		flattener:   flattener,
		sorter:      sorter,
		types:       types,
		defaultMode: parsemode.Phrase,
	}
}

// WithDefaultMode sets the parse mode used when a request names none.
func (s *Service) WithDefaultMode(m parsemode.Mode) *Service {
	if m.IsValid() {
		s.defaultMode = m
	}
	return s
}

// WithNameCache memoizes up to size field name transforms. size <= 0 disables the cache.
func (s *Service) WithNameCache(size int) *Service {
	if size <= 0 {
		s.names = nil
		return s
	}
	c, err := lru.New[string, string](size)
	if err == nil {
		s.names = c
	}
	return s
}

// DefaultMode returns the parse mode used when a request names none.
func (s *Service) DefaultMode() parsemode.Mode { return s.defaultMode }

// Flatten compiles a key tree into a query string.
func (s *Service) Flatten(ctx context.Context, req FlattenRequest) (string, error) {
	start := time.Now()
	m := s.mode(req.Mode)

	q, err := s.flatten(req, m)
	metrics.ObserveCompile(metrics.OpFlatten, modeLabel(m), start, err)
	if err != nil {
		s.logFailure(ctx, metrics.OpFlatten, m, err)
		return "", fmt.Errorf("flatten keys: %w", err)
	}
	return q, nil
}

// Compile flattens a request without recording metrics or logging failures.
// Health checks use it so that self-tests stay out of the compile series.
func (s *Service) Compile(req FlattenRequest) (string, error) {
	return s.flatten(req, s.mode(req.Mode))
}

func (s *Service) flatten(req FlattenRequest, m parsemode.Mode) (string, error) {
	if !m.IsValid() {
		return "", unknownMode(m)
	}
	return s.flattener.Flatten(req.Keys, req.Fields, m)
}

// PayloadScore compiles a key tree into payload_score clauses.
func (s *Service) PayloadScore(ctx context.Context, k keys.Child, mode parsemode.Mode) (string, error) {
	start := time.Now()
	m := s.mode(mode)

	var (
		q   string
		err error
	)
	if m.IsValid() {
		q, err = s.flattener.PayloadScore(k, m)
	} else {
		err = unknownMode(m)
	}
	metrics.ObserveCompile(metrics.OpPayloadScore, modeLabel(m), start, err)
	if err != nil {
		s.logFailure(ctx, metrics.OpPayloadScore, m, err)
		return "", fmt.Errorf("payload score: %w", err)
	}
	return q, nil
}

// ResolveSort returns the engine field to sort by.
func (s *Service) ResolveSort(ctx context.Context, req SortRequest) (string, error) {
	start := time.Now()

	field, err := s.resolveSort(req)
	metrics.ObserveCompile(metrics.OpSort, "", start, err)
	if err != nil {
		logger.FromContext(ctx).Warn("sort resolution failed",
			zap.String("field", req.Field),
			zap.String("kind", metrics.Status(err)),
			zap.Error(err),
		)
		return "", fmt.Errorf("resolve sort field: %w", err)
	}
	return field, nil
}

func (s *Service) resolveSort(req SortRequest) (string, error) {
	candidates := req.Candidates
	if len(candidates) == 0 && req.DataType != "" {
		name, err := s.types.FieldName(req.DataType, req.MultiValued, req.Field)
		if err != nil {
			return "", err
		}
		candidates = []string{name}
	}

	idx := index.New(req.Datasources...)
	return s.sorter.Resolve(
		req.Field,
		map[string][]string{req.Field: candidates},
		idx.HasJustDocumentDatasource(),
		sortfield.Query{Languages: req.Languages, RandomSeed: req.RandomSeed},
	)
}

// EncodeNames encodes logical field names into engine identifiers.
func (s *Service) EncodeNames(names []string) []string {
	return s.transform(TransformEncode, "", names, fieldname.Encode)
}

// DecodeNames reverses EncodeNames.
func (s *Service) DecodeNames(names []string) []string {
	return s.transform(TransformDecode, "", names, fieldname.Decode)
}

// LanguageNames maps dynamic field names to their language-specific variant.
func (s *Service) LanguageNames(names []string, language string) []string {
	return s.transform(TransformLanguage, language, names, func(n string) string {
		return fieldname.LanguageSpecificName(n, language)
	})
}

// GenericNames maps language-specific dynamic field names back to the generic ones.
func (s *Service) GenericNames(names []string) []string {
	return s.transform(TransformGeneric, "", names, fieldname.GenericName)
}

func (s *Service) transform(op, arg string, names []string, fn func(string) string) []string {
	start := time.Now()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = s.cached(op+"\x00"+arg+"\x00"+n, n, fn)
	}
	metrics.ObserveCompile(metrics.OpFieldName, op, start, nil)
	return out
}

func (s *Service) cached(key, name string, fn func(string) string) string {
	if s.names == nil {
		return fn(name)
	}
	if v, ok := s.names.Get(key); ok {
		return v
	}
	v := fn(name)
	s.names.Add(key, v)
	return v
}

// NormalizeRows rounds a row count up to its cache-friendly value.
func (s *Service) NormalizeRows(n int64) int64 {
	return rows.Normalize(n)
}

func (s *Service) mode(m parsemode.Mode) parsemode.Mode {
	if m == "" {
		return s.defaultMode
	}
	return m
}

func (s *Service) logFailure(ctx context.Context, op string, m parsemode.Mode, err error) {
	logger.FromContext(ctx).Warn("compile failed",
		zap.String("op", op),
		zap.String("mode", string(m)),
		zap.String("kind", metrics.Status(err)),
		zap.Error(err),
	)
}

// modeLabel keeps client-supplied mode strings out of metric labels.
func modeLabel(m parsemode.Mode) string {
	if !m.IsValid() {
		return metrics.ModeUnknown
	}
	return string(m)
}

func unknownMode(m parsemode.Mode) error {
	return domain.NewQueryError(domain.ErrIncompatibleParseMode, "unknown parse mode %q", m)
}
