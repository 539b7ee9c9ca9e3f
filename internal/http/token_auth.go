package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/services"
)

// TokenAuthController serves /api/v1/auth/token.
type TokenAuthController struct {
	svc *services.TokenAuthService
}

func NewTokenAuthController(svc *services.TokenAuthService) *TokenAuthController {
	return &TokenAuthController{svc: svc}
}

// Login takes an OAuth2 password form (username, password).
func (tc *TokenAuthController) Login(c *gin.Context) {
	var form services.LoginRequest
	if err := bindForm(c, &form); err != nil {
		respondError(c, err)
		return
	}
	if err := services.Validate(form); err != nil {
		respondError(c, err)
		return
	}

	token, err := tc.svc.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, token)
}

// Refresh exchanges the refresh token in the Authorization header for a new
// access token.
func (tc *TokenAuthController) Refresh(c *gin.Context) {
	raw, ok := auth.BearerToken(c.Request)
	if !ok {
		respondError(c, apperr.Unauthorized("Not authenticated"))
		return
	}

	token, err := tc.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, token)
}

func (tc *TokenAuthController) Verify(c *gin.Context) {
	payload, err := auth.CurrentPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, services.PayloadToRead(*payload))
}

func (tc *TokenAuthController) Me(c *gin.Context) {
	payload, err := auth.CurrentPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := tc.svc.Me(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// ExplicitMe reads the bearer token itself instead of relying on the gate,
// so it works on an excluded path.
func (tc *TokenAuthController) ExplicitMe(c *gin.Context) {
	raw, ok := auth.BearerToken(c.Request)
	if !ok {
		respondError(c, apperr.Unauthorized("Not authenticated"))
		return
	}

	user, err := tc.svc.ExplicitMe(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}
