package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"absensi/internal/identity"
	"absensi/internal/model"
	"absensi/internal/session"
)

type ProfileWriter interface {
	SaveProfile(ctx context.Context, p *model.UserProfile) error
}

type SignUpRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Role     model.Role `json:"role" validate:"required,oneof=teacher admin"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	provider *identity.Provider
	profiles ProfileWriter
	resolver *session.Resolver
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthService(provider *identity.Provider, profiles ProfileWriter, resolver *session.Resolver, v *validator.Validate, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{provider: provider, profiles: profiles, resolver: resolver, validate: v, logger: logger}
}

// SignUp creates the account and then its profile document. When the
// profile write fails the account stays; the user then resolves to the
// fallback profile.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*session.Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	grant, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		UID:   grant.Identity.UID,
		Email: grant.Identity.Email,
		Name:  req.Name,
		Role:  req.Role,
	}
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		s.logger.ErrorContext(ctx, "account created without profile", "uid", grant.Identity.UID, "error", err)
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.resolver.Invalidate(grant.Identity.UID)

	return s.session(ctx, grant)
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*session.Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	grant, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.session(ctx, grant)
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

// Authenticate resolves a session token to a full session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	id, err := s.provider.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	sess, err := s.resolver.Resolve(ctx, *id)
	if err != nil {
		return nil, err
	}
	sess.Token = token
	return sess, nil
}

func (s *AuthService) session(ctx context.Context, grant *identity.Grant) (*session.Session, error) {
	sess, err := s.resolver.Resolve(ctx, grant.Identity)
	if err != nil {
		return nil, err
	}
	sess.Token = grant.Token
	return sess, nil
}

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
