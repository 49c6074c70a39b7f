package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Register(ctx context.Context, reg identity.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

func (m *MockAuthGateway) Login(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockAuthGateway) Logout(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAuthGateway) Refresh(ctx context.Context) (*identity.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Enforce(ctx context.Context, name protection.PolicyName, subject protection.Subject) error {
	return m.Called(ctx, name, subject).Error(0)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestAuthService_Register(t *testing.T) {
	disposable := &protection.Denial{
		DomainError: shared.NewDomainError(shared.CodeForbidden, "Disposable email not allowed"),
		Status:      http.StatusForbidden,
	}

	tests := []struct {
		name     string
		reg      identity.Registration
		guardErr error
		wantErr  string
	}{
		{"registered", identity.Registration{Name: "Amina", Email: "amina@example.ug", Password: "secret1"}, nil, ""},
		{"invalid form", identity.Registration{Name: "", Email: "amina@example.ug", Password: "secret1"}, nil, "Name is required"},
		{"protection denies", identity.Registration{Name: "Amina", Email: "x@mailinator.com", Password: "secret1"}, disposable, "Disposable email not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockAuthGateway)
			guard := new(MockGuard)
			guard.On("Enforce", mock.Anything, protection.PolicySignup, protection.Subject{Email: tt.reg.Email}).Return(tt.guardErr).Maybe()
			gw.On("Register", mock.Anything, mock.Anything).Return("u1", nil).Maybe()

			id, err := NewAuthService(gw, WithGuard(guard)).Register(context.Background(), tt.reg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				gw.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", id)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	gw := new(MockAuthGateway)
	guard := new(MockGuard)
	ctx := context.Background()

	guard.On("Enforce", mock.Anything, protection.PolicyLogin, protection.Subject{Email: "amina@example.ug"}).Return(nil)
	session := &identity.Session{User: identity.User{ID: "u1", Role: identity.RoleUser}, Cookies: []string{"accessToken=abc; Path=/"}}
	gw.On("Login", mock.Anything, identity.Credentials{Email: "amina@example.ug", Password: "pw"}).Return(session, nil)

	got, err := NewAuthService(gw, WithGuard(guard)).Login(ctx, identity.Credentials{Email: " amina@example.ug ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, session.Cookies, got.Cookies)

	_, err = NewAuthService(gw).Login(ctx, identity.Credentials{Email: "amina@example.ug"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAuthService_Logout(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gw := new(MockAuthGateway)
	revoker := new(MockRevoker)
	ctx := context.Background()

	gw.On("Logout", ctx).Return([]string{"accessToken=; Max-Age=0"}, nil)
	revoker.On("Revoke", ctx, "tok").Return(errors.New("redis down"))

	svc := NewAuthService(gw, WithRevoker(revoker), WithLogger(zap.New(core)))
	cookies, err := svc.Logout(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, cookies, 1)
	assert.Equal(t, 1, logs.FilterMessage("Failed to revoke access token").Len())

	_, err = svc.Logout(ctx, "")
	require.NoError(t, err)
	revoker.AssertNumberOfCalls(t, "Revoke", 1)
}

func TestAuthService_Refresh(t *testing.T) {
	gw := new(MockAuthGateway)
	gw.On("Refresh", mock.Anything).Return(nil, shared.ErrUnauthorized)

	_, err := NewAuthService(gw).Refresh(context.Background())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
