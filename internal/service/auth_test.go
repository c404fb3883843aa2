package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"absensi/internal/identity"
	"absensi/internal/model"
	"absensi/internal/session"
)

type authFixture struct {
	svc      *AuthService
	profiles *memProfiles
	provider *identity.Provider
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	profiles := newMemProfiles()
	provider := identity.NewProvider(newMemCredentials(), identity.Options{Secret: "test-secret", TTL: time.Hour})
	resolver := session.NewResolver(profiles, session.ResolverOptions{Logger: quietLogger()})
	stop := resolver.Start(provider)
	t.Cleanup(stop)
	return &authFixture{
		svc:      NewAuthService(provider, profiles, resolver, validator.New(), quietLogger()),
		profiles: profiles,
		provider: provider,
	}
}

func TestSignUpWritesProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess, err := f.svc.SignUp(ctx, SignUpRequest{Name: "Bu Admin", Email: "Admin@Example.com", Password: "rahasia", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if sess.Token == "" || sess.Profile.Fallback {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.Profile.Role != model.RoleAdmin || sess.View("admin") != "admin" {
		t.Fatalf("admin sign-up should land on the admin view")
	}

	stored, _ := f.profiles.Profile(ctx, sess.Identity.UID)
	if stored == nil || stored.Email != "admin@example.com" || stored.Name != "Bu Admin" {
		t.Fatalf("stored profile = %+v", stored)
	}

	again, err := f.svc.Authenticate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if again.Identity.UID != sess.Identity.UID || again.Token != sess.Token {
		t.Fatalf("Authenticate resolved %+v", again.Identity)
	}
}

func TestSignUpValidation(t *testing.T) {
	f := newAuthFixture(t)
	cases := map[string]SignUpRequest{
		"employee role": {Name: "A", Email: "a@example.com", Password: "pw", Role: model.RoleEmployee},
		"bad email":     {Name: "A", Email: "not-an-email", Password: "pw", Role: model.RoleTeacher},
		"missing name":  {Email: "a@example.com", Password: "pw", Role: model.RoleTeacher},
		"no password":   {Name: "A", Email: "a@example.com", Role: model.RoleTeacher},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.SignUp(context.Background(), req)
			if !IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	req := SignUpRequest{Name: "A", Email: "a@example.com", Password: "pw", Role: model.RoleTeacher}
	if _, err := f.svc.SignUp(context.Background(), req); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := f.svc.SignUp(context.Background(), req); !errors.Is(err, identity.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestSignUpProfileFailureKeepsAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.profiles.saveErr = errors.New("permission denied")

	_, err := f.svc.SignUp(ctx, SignUpRequest{Name: "Pak Guru", Email: "guru@example.com", Password: "pw", Role: model.RoleTeacher})
	if err == nil || !errors.Is(err, f.profiles.saveErr) {
		t.Fatalf("err = %v, want wrapped profile error", err)
	}

	sess, err := f.svc.SignIn(ctx, SignInRequest{Email: "guru@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("account should exist after failed profile write: %v", err)
	}
	if !sess.Profile.Fallback || sess.Profile.Name != "guru@example.com" || sess.Profile.Role != model.RoleTeacher {
		t.Fatalf("expected fallback profile, got %+v", sess.Profile)
	}
}

func TestSignInAndOut(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.SignUp(ctx, SignUpRequest{Name: "A", Email: "a@example.com", Password: "pw", Role: model.RoleTeacher}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := f.svc.SignIn(ctx, SignInRequest{Email: "a@example.com", Password: "wrong"}); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.SignIn(ctx, SignInRequest{Email: "a@example.com"}); !IsValidation(err) {
		t.Fatalf("missing password should fail validation, got %v", err)
	}

	sess, err := f.svc.SignIn(ctx, SignInRequest{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.View("admin") != "attendance" {
		t.Fatalf("teacher must not reach the admin view")
	}

	if err := f.svc.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, sess.Token); !errors.Is(err, identity.ErrTokenRevoked) {
		t.Fatalf("err = %v, want ErrTokenRevoked", err)
	}
}

func TestAuthenticateWithoutToken(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v", err)
	}
}
