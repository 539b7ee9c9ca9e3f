package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/services"
)

// SessionAuthController serves /api/v1/auth/session.
type SessionAuthController struct {
	svc *services.SessionAuthService
}

func NewSessionAuthController(svc *services.SessionAuthService) *SessionAuthController {
	return &SessionAuthController{svc: svc}
}

func sameSiteMode(s config.SameSite) http.SameSite {
	switch s {
	case config.SameSiteStrict:
		return http.SameSiteStrictMode
	case config.SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func writeCookie(c *gin.Context, cfg config.SessionCookieConfig, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.Key,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: sameSiteMode(cfg.SameSite),
	})
}

func (sc *SessionAuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	cookie, err := sc.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	writeCookie(c, cookie.SessionCookieConfig, cookie.Value, cookie.MaxAge)
	respondOK(c, SuccessResponse{Message: "Logged in"})
}

func (sc *SessionAuthController) Verify(c *gin.Context) {
	session, err := auth.CurrentSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, sc.svc.Verify(session))
}

// Logout always succeeds and always clears the cookie, even when no session
// was presented.
func (sc *SessionAuthController) Logout(c *gin.Context) {
	cfg := sc.svc.CookieConfig()
	if value, err := c.Cookie(cfg.Key); err == nil && value != "" {
		if err := sc.svc.Logout(c.Request.Context(), value); err != nil {
			_ = c.Error(err)
		}
	}

	writeCookie(c, cfg, "", -1)
	respondOK(c, SuccessResponse{Message: "Logged out"})
}

// CSRF hands the current masked CSRF token to the client.
func (sc *SessionAuthController) CSRF(c *gin.Context) {
	respondOK(c, gin.H{"csrf_token": auth.GetCSRFToken(c)})
}
