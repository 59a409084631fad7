package chi

import "encoding/json"

// ErrorCode identifies an API error class.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeModeFieldMismatch     ErrorCode = "mode_field_mismatch"
	CodeIncompatibleParseMode ErrorCode = "incompatible_parse_mode"
	CodeSortUnsupported       ErrorCode = "sort_unsupported"
	CodeUnknownDataType       ErrorCode = "unknown_data_type"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// FlattenRequest is the body of POST /v1/flatten. Keys holds the generic key
// structure or a bare query string.
type FlattenRequest struct {
	Keys   json.RawMessage `json:"keys"`
	Fields []string        `json:"fields,omitempty"`
	Mode   string          `json:"mode,omitempty"`
}

// PayloadScoreRequest is the body of POST /v1/payload-score.
type PayloadScoreRequest struct {
	Keys json.RawMessage `json:"keys"`
	Mode string          `json:"mode,omitempty"`
}

// QueryResponse carries a compiled query fragment.
type QueryResponse struct {
	Query string `json:"query"`
}

// SortRequest is the body of POST /v1/sort.
type SortRequest struct {
	Field       string   `json:"field"`
	Candidates  []string `json:"candidates,omitempty"`
	Type        string   `json:"type,omitempty"`
	MultiValued bool     `json:"multi_valued,omitempty"`
	Datasources []string `json:"datasources,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	RandomSeed  string   `json:"random_seed,omitempty"`
}

// SortResponse carries the resolved sort field.
type SortResponse struct {
	Field string `json:"field"`
}

// NamesRequest is the body of the /v1/fieldnames endpoints.
type NamesRequest struct {
	Names    []string `json:"names"`
	Language string   `json:"language,omitempty"`
}

// NamesResponse carries transformed field names in request order.
type NamesResponse struct {
	Names []string `json:"names"`
}

// RowsResponse carries a normalized row count.
type RowsResponse struct {
	Rows int64 `json:"rows"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Version     string            `json:"version"`
	DefaultMode string            `json:"default_mode"`
}
