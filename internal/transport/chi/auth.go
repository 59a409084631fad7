package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/solrkeys/internal/logger"
)

// apiPrefix is the route prefix guarded by API keys. Health and metrics stay open.
const apiPrefix = "/v1/"

// RequireAPIKey guards the compile API with bearer API keys.
// Without keys every request passes.
func RequireAPIKey(apiKeys []string) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, apiPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token, reason := bearerToken(r.Header.Get("Authorization"))
			if reason == "" && !knownKey(keys, token) {
				reason = "unknown api key"
			}
			if reason != "" {
				logpkg.FromContext(r.Context()).Info("api key rejected", zap.String("reason", reason))
				w.Header().Set("WWW-Authenticate", `Bearer realm="solrkeys"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of a bearer Authorization header. A non-empty
// reason explains why the header is unusable.
func bearerToken(header string) (token []byte, reason string) {
	if header == "" {
		return nil, "missing authorization header"
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, "authorization header must use the Bearer scheme"
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, "empty bearer token"
	}
	return []byte(value), ""
}

// knownKey compares against every key so the time taken does not reveal a match position.
func knownKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}
