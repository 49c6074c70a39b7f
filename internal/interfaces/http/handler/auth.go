package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/interfaces/http/dto"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
)

// AuthService is the sign-in use-case surface
type AuthService interface {
	Register(ctx context.Context, reg identity.Registration) (string, error)
	Login(ctx context.Context, creds identity.Credentials) (*identity.Session, error)
	Logout(ctx context.Context, accessToken string) ([]string, error)
	Refresh(ctx context.Context) (*identity.Session, error)
}

// AuthHandler serves signup, login, logout and token refresh. Session
// cookies are issued by the store backend and relayed unchanged.
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRequest is the signup form
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse carries the new account id
type RegisterResponse struct {
	UserID string `json:"userId"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := h.service.Register(c.Request.Context(), identity.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageResponse("Account created successfully", RegisterResponse{UserID: id}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.Login(c.Request.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	relayCookies(c, session.Cookies)
	h.SuccessWithMessage(c, "Login successful", session.User)
}

// Logout ends the backend session and revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.GetJWTToken(c)
	if token == "" {
		token = middleware.TokenFromRequest(c.Request)
	}
	cookies, err := h.service.Logout(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	relayCookies(c, cookies)
	h.SuccessWithMessage(c, "Logged out", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	session, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	relayCookies(c, session.Cookies)
	h.Success(c, session.User)
}

func relayCookies(c *gin.Context, cookies []string) {
	for _, cookie := range cookies {
		c.Writer.Header().Add("Set-Cookie", cookie)
	}
}
