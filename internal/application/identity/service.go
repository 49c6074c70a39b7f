package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/infrastructure/telemetry"
)

// Guard evaluates abuse protection for an action
type Guard interface {
	Enforce(ctx context.Context, name protection.PolicyName, subject protection.Subject) error
}

// Revoker blacklists an access token until it expires
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// AuthService runs signup, login, logout and refresh against the backend
type AuthService struct {
	gateway identity.AuthGateway
	guard   Guard
	revoker Revoker
	logger  *zap.Logger
}

// Option configures the AuthService
type Option func(*AuthService)

// WithGuard enables signup and login protection
func WithGuard(g Guard) Option {
	return func(s *AuthService) {
		s.guard = g
	}
}

// WithRevoker revokes access tokens on logout
func WithRevoker(r Revoker) Option {
	return func(s *AuthService) {
		s.revoker = r
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *AuthService) {
		s.logger = l
	}
}

// NewAuthService creates a new AuthService
func NewAuthService(gateway identity.AuthGateway, opts ...Option) *AuthService {
	s := &AuthService{gateway: gateway, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the form, runs signup protection and creates the account
func (s *AuthService) Register(ctx context.Context, reg identity.Registration) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "register")
	var err error
	defer func() { telemetry.End(span, err) }()

	if err = reg.Validate(); err != nil {
		return "", err
	}
	if err = s.enforce(ctx, protection.PolicySignup, reg.Email); err != nil {
		return "", err
	}
	id, err := s.gateway.Register(ctx, reg)
	if err != nil {
		return "", err
	}
	s.logger.Info("User registered", zap.String("user_id", id))
	return id, nil
}

// Login validates the form, runs login protection and signs the user in
func (s *AuthService) Login(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "login")
	var err error
	defer func() { telemetry.End(span, err) }()

	if err = creds.Validate(); err != nil {
		return nil, err
	}
	if err = s.enforce(ctx, protection.PolicyLogin, creds.Email); err != nil {
		return nil, err
	}
	session, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Logout ends the backend session and revokes accessToken. Revocation
// failures are logged; the cookies are cleared either way.
func (s *AuthService) Logout(ctx context.Context, accessToken string) ([]string, error) {
	cookies, err := s.gateway.Logout(ctx)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil && accessToken != "" {
		if rerr := s.revoker.Revoke(ctx, accessToken); rerr != nil {
			s.logger.Warn("Failed to revoke access token", zap.Error(rerr))
		}
	}
	return cookies, nil
}

// Refresh exchanges the refresh cookie for a new session
func (s *AuthService) Refresh(ctx context.Context) (*identity.Session, error) {
	return s.gateway.Refresh(ctx)
}

func (s *AuthService) enforce(ctx context.Context, policy protection.PolicyName, email string) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Enforce(ctx, policy, protection.Subject{Email: email})
}
