// Account HTTP handlers.
//
//   - POST /auth/register   (create a User account)
//   - POST /auth/login      (issue a bearer token)
//   - GET  /auth/me         (current account)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/services"
)

// AuthService manages accounts and tokens.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Me(ctx context.Context, userID uint) (*domain.User, error)
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required" example:"an@example.com"`
	Password    string `json:"password" binding:"required" example:"secret123"`
	DisplayName string `json:"display_name" example:"An"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"an@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Account"
// @Success     201   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid email or weak password"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}
	u, err := h.svc.Auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  services.LoginResult
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     403   {object}  handlers.ErrorResponse  "Account disabled"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}
	res, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.svc.Auth.Me(c.Request.Context(), actor(c).UserID)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
