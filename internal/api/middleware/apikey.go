package middleware

import (
	"net/http"

	"github.com/tradepulse/backend/internal/auth"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/utils"
)

// APIKeyHeader carries the service credential for trusted callers, such as
// the bot process.
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware returns a middleware that validates the service API key
func APIKeyMiddleware(configuredKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if !auth.CheckAPIKey(presented, configuredKey) {
				utils.WriteError(w, errors.Unauthorized("Invalid API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
