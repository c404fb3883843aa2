package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"absensi/internal/model"
	"absensi/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrTokenRevoked       = errors.New("session has been signed out")
)

// Identity is an authenticated user as known to the provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

// Event is an auth-state change.
type Event struct {
	Kind     EventKind
	Identity Identity
}

// Grant is the result of a successful sign-in or sign-up.
type Grant struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

type CredentialStore interface {
	CreateCredential(ctx context.Context, c *model.Credential) error
	CredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
}

type Options struct {
	Secret      string
	TTL         time.Duration
	Revocations Revocations
	Now         func() time.Time
}

// Provider issues and verifies password-based sessions and publishes
// auth-state changes to its subscribers.
type Provider struct {
	creds       CredentialStore
	tokens      *tokenIssuer
	revocations Revocations
	now         func() time.Time

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(context.Context, Event)
}

func NewProvider(creds CredentialStore, opts Options) *Provider {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Revocations == nil {
		opts.Revocations = NewMemoryRevocations()
	}
	return &Provider{
		creds:       creds,
		tokens:      &tokenIssuer{secret: []byte(opts.Secret), ttl: opts.TTL},
		revocations: opts.Revocations,
		now:         opts.Now,
		subs:        make(map[int]func(context.Context, Event)),
	}
}

// Subscribe registers fn for auth-state changes. Callbacks run synchronously
// on the goroutine that caused the change. The returned func unsubscribes.
func (p *Provider) Subscribe(fn func(context.Context, Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) publish(ctx context.Context, ev Event) {
	p.mu.RLock()
	subs := make([]func(context.Context, Event), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, ev)
	}
}

// SignUp creates a credential for email and signs the new user in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*Grant, error) {
	email = normalizeEmail(email)
	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	cred := &model.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    p.now(),
	}
	if err := p.creds.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return p.grant(ctx, Identity{UID: cred.UID, Email: cred.Email})
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Grant, error) {
	cred, err := p.creds.CredentialByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if cred == nil || !checkPassword(cred.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p.grant(ctx, Identity{UID: cred.UID, Email: cred.Email})
}

func (p *Provider) grant(ctx context.Context, id Identity) (*Grant, error) {
	token, claims, err := p.tokens.issue(id, p.now())
	if err != nil {
		return nil, err
	}
	p.publish(ctx, Event{Kind: SignedIn, Identity: id})
	return &Grant{Identity: id, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify resolves a session token to its identity.
func (p *Provider) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.tokens.parse(token, p.now())
	if err != nil {
		return nil, err
	}
	revoked, err := p.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// SignOut revokes the token. Signing out an already revoked token is a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.parse(token, p.now())
	if err != nil {
		return err
	}
	if err := p.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	p.publish(ctx, Event{Kind: SignedOut, Identity: Identity{UID: claims.Subject, Email: claims.Email}})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
