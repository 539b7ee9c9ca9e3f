package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/httperr"
)

// CSRFTokenHeader is the header clients echo the CSRF token in.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// CSRFMiddleware protects cookie-authenticated requests. Requests carrying
// a bearer token and the exempt paths (login) skip the check.
func CSRFMiddleware(secret []byte, secure bool, exempt []string, log *zap.Logger) gin.HandlerFunc {
	exemptSet := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		exemptSet[normalizePath(p)] = struct{}{}
	}

	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)),
			)
		})),
	)

	return func(c *gin.Context) {
		if _, ok := BearerToken(c.Request); ok {
			c.Next()
			return
		}
		if _, ok := exemptSet[normalizePath(c.Request.URL.Path)]; ok {
			c.Next()
			return
		}

		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}

		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
		})).ServeHTTP(c.Writer, r)

		if !passed {
			httperr.Abort(c, apperr.Forbidden("CSRF token invalid or missing"))
			return
		}
		c.Next()
	}
}

// GetCSRFToken retrieves the CSRF token issued for this request.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(contextKeyCSRFToken); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
