package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	logpkg "github.com/kailas-cloud/solrkeys/internal/logger"
	compileuc "github.com/kailas-cloud/solrkeys/internal/usecase/compile"
	healthuc "github.com/kailas-cloud/solrkeys/internal/usecase/health"
	"github.com/kailas-cloud/solrkeys/internal/version"
)

const defaultMaxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the compile API.
type Server struct {
	compile       *compileuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(compile *compileuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		compile:      compile,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidKeys, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrModeFieldMismatch, http.StatusBadRequest, CodeModeFieldMismatch),
		sentinelHandler(domain.ErrUnknownDataType, http.StatusBadRequest, CodeUnknownDataType),
		sentinelHandler(domain.ErrIncompatibleParseMode,
			http.StatusUnprocessableEntity, CodeIncompatibleParseMode),
		sentinelHandler(domain.ErrSortUnsupported, http.StatusUnprocessableEntity, CodeSortUnsupported),
	}
	return s
}

// WithMaxBodyBytes limits request bodies. n <= 0 keeps the default.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers all API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/flatten", s.Flatten)
		r.Post("/payload-score", s.PayloadScore)
		r.Post("/sort", s.ResolveSort)
		r.Get("/rows", s.Rows)

		r.Route("/fieldnames", func(r chi.Router) {
			r.Post("/encode", s.EncodeNames)
			r.Post("/decode", s.DecodeNames)
			r.Post("/language", s.LanguageNames)
			r.Post("/generic", s.GenericNames)
		})
	})
}

// Flatten handles POST /v1/flatten.
func (s *Server) Flatten(w http.ResponseWriter, r *http.Request) {
	var req FlattenRequest
	if !s.decode(w, r, &req) {
		return
	}
	k, ok := s.parseKeys(w, r, req.Keys)
	if !ok {
		return
	}

	q, err := s.compile.Flatten(r.Context(), compileuc.FlattenRequest{
		Keys:   k,
		Fields: req.Fields,
		Mode:   parsemode.Mode(req.Mode),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Query: q})
}

// PayloadScore handles POST /v1/payload-score.
func (s *Server) PayloadScore(w http.ResponseWriter, r *http.Request) {
	var req PayloadScoreRequest
	if !s.decode(w, r, &req) {
		return
	}
	k, ok := s.parseKeys(w, r, req.Keys)
	if !ok {
		return
	}

	q, err := s.compile.PayloadScore(r.Context(), k, parsemode.Mode(req.Mode))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Query: q})
}

// ResolveSort handles POST /v1/sort.
func (s *Server) ResolveSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field is required")
		return
	}

	field, err := s.compile.ResolveSort(r.Context(), compileuc.SortRequest{
		Field:       req.Field,
		Candidates:  req.Candidates,
		DataType:    req.Type,
		MultiValued: req.MultiValued,
		Datasources: req.Datasources,
		Languages:   req.Languages,
		RandomSeed:  req.RandomSeed,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SortResponse{Field: field})
}

// Rows handles GET /v1/rows?n=.
func (s *Server) Rows(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(r.URL.Query().Get("n"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "n must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, RowsResponse{Rows: s.compile.NormalizeRows(n)})
}

// EncodeNames handles POST /v1/fieldnames/encode.
func (s *Server) EncodeNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: s.compile.EncodeNames(req.Names)})
}

// DecodeNames handles POST /v1/fieldnames/decode.
func (s *Server) DecodeNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: s.compile.DecodeNames(req.Names)})
}

// LanguageNames handles POST /v1/fieldnames/language.
func (s *Server) LanguageNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "language is required")
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: s.compile.LanguageNames(req.Names, req.Language)})
}

// GenericNames handles POST /v1/fieldnames/generic.
func (s *Server) GenericNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: s.compile.GenericNames(req.Names)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		Version:     version.Version,
		DefaultMode: string(s.compile.DefaultMode()),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) parseKeys(w http.ResponseWriter, r *http.Request, raw json.RawMessage) (keys.Child, bool) {
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "keys is required")
		return keys.Child{}, false
	}
	k, err := keys.Parse(raw)
	if err != nil {
		s.requestLogger(r).Warn("invalid keys", zap.Error(err))
		s.handleDomainError(w, r, err)
		return keys.Child{}, false
	}
	return k, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the query error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		return qe.Error()
	}
	sentinels := []error{
		domain.ErrInvalidKeys,
		domain.ErrModeFieldMismatch,
		domain.ErrIncompatibleParseMode,
		domain.ErrSortUnsupported,
		domain.ErrUnknownDataType,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// handleDomainError maps err to a response. Domain failures are already
// logged where they occur; only unmapped errors are logged here.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.requestLogger(r).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// requestLogger returns the request-scoped logger, or the server logger outside the router.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}
