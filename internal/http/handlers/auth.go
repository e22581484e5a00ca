package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/auth"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/http/response"
)

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput, client auth.ClientInfo) (*auth.AuthTokens, error)
	Login(ctx context.Context, email, password string, client auth.ClientInfo) (*auth.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string, client auth.ClientInfo) (*auth.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*userdomain.Entity, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type AuthHandler struct {
	authService AuthService
	cookieCfg   auth.CookieConfig
	useCookies  bool
	errs        *Errors
	validate    validatorFunc
}

func NewAuthHandler(authService AuthService, cookieCfg auth.CookieConfig, useCookies bool, errs *Errors) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieCfg:   cookieCfg,
		useCookies:  useCookies,
		errs:        errs,
		validate:    newValidator().Struct,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Validation(c, err)
		return
	}
	if err := h.validate(req); err != nil {
		h.errs.Validation(c, err)
		return
	}

	tokens, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, clientInfo(c))
	if err != nil {
		if errors.Is(err, userdomain.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, "Usuário já existe com este email", "")
			return
		}
		h.errs.Write(c, err)
		return
	}
	h.setCookies(c, tokens)
	response.OK(c, http.StatusCreated, "Usuário registrado com sucesso", tokens)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Validation(c, err)
		return
	}
	if err := h.validate(req); err != nil {
		h.errs.Validation(c, err)
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	h.setCookies(c, tokens)
	response.OK(c, http.StatusOK, "Login realizado com sucesso", tokens)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}
	user, err := h.authService.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Perfil do usuário", user)
}

// Refresh reads the refresh token from the JSON body, or from the refresh
// cookie when the body carries none.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "missing refresh token")
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), token, clientInfo(c))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	h.setCookies(c, tokens)
	response.OK(c, http.StatusOK, "Token renovado com sucesso", tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.refreshToken(c); token != "" {
		_ = h.authService.Logout(c.Request.Context(), token)
	}
	if h.useCookies {
		auth.ClearAuthCookies(c.Writer, h.cookieCfg)
	}
	response.OK(c, http.StatusOK, "Logout realizado com sucesso", nil)
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	var req refreshRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if h.useCookies {
		if cookie, err := c.Request.Cookie(auth.RefreshCookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

func (h *AuthHandler) setCookies(c *gin.Context, tokens *auth.AuthTokens) {
	if !h.useCookies {
		return
	}
	auth.SetAuthCookies(c.Writer, h.cookieCfg, tokens.AccessToken, tokens.RefreshToken, h.authService.AccessTTL(), h.authService.RefreshTTL())
}

func clientInfo(c *gin.Context) auth.ClientInfo {
	return auth.ClientInfo{UserAgent: c.GetHeader("User-Agent"), IPAddress: auth.ClientIP(c.Request)}
}
