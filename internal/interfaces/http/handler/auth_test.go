package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, reg identity.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) ([]string, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context) (*identity.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func newAuthHandlerRouter(svc AuthService, token string) http.Handler {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if token != "" {
			c.Set(middleware.JWTTokenKey, token)
		}
		c.Next()
	})
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/refresh", h.Refresh)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, identity.Registration{Name: "Nakato", Email: "nakato@example.com", Password: "secret1"}).
		Return("u-42", nil)

	r := newAuthHandlerRouter(svc, "")
	w := performJSON(r, http.MethodPost, "/auth/register",
		map[string]string{"name": "Nakato", "email": "nakato@example.com", "password": "secret1"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(decodeResponse(t, w).Data), `"userId":"u-42"`)

	w = performJSON(r, http.MethodPost, "/auth/register",
		map[string]string{"name": "Nakato", "email": "not-an-email", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Register", 1)
}

func TestAuthHandler_LoginRelaysCookies(t *testing.T) {
	svc := new(MockAuthService)
	session := &identity.Session{
		User: identity.User{ID: "u-1", Name: "Okello", Email: "okello@example.com", Role: identity.RoleUser},
		Cookies: []string{
			"accessToken=abc; Path=/; HttpOnly",
			"refreshToken=def; Path=/; HttpOnly",
		},
	}
	svc.On("Login", mock.Anything, identity.Credentials{Email: "okello@example.com", Password: "pw"}).Return(session, nil)

	w := performJSON(newAuthHandlerRouter(svc, ""), http.MethodPost, "/auth/login",
		map[string]string{"email": "okello@example.com", "password": "pw"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.Cookies, w.Header().Values("Set-Cookie"))
	resp := decodeResponse(t, w)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Contains(t, string(resp.Data), `"role":"USER"`)
}

func TestAuthHandler_LoginFailure(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password"))

	w := performJSON(newAuthHandlerRouter(svc, ""), http.MethodPost, "/auth/login",
		map[string]string{"email": "okello@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the authenticated token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Logout", mock.Anything, "tok-1").Return([]string{"accessToken=; Max-Age=0"}, nil)

		w := performJSON(newAuthHandlerRouter(svc, "tok-1"), http.MethodPost, "/auth/logout", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"accessToken=; Max-Age=0"}, w.Header().Values("Set-Cookie"))
		svc.AssertExpectations(t)
	})

	t.Run("falls back to the bearer header", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Logout", mock.Anything, "tok-2").Return([]string{}, nil)

		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/logout", h.Logout)
		req := newRequest(http.MethodPost, "/auth/logout")
		req.Header.Set("Authorization", "Bearer tok-2")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Refresh", mock.Anything).Return(&identity.Session{
		User:    identity.User{ID: "u-1"},
		Cookies: []string{"accessToken=new; Path=/"},
	}, nil)

	w := performJSON(newAuthHandlerRouter(svc, ""), http.MethodPost, "/auth/refresh", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"accessToken=new; Path=/"}, w.Header().Values("Set-Cookie"))
}
