// Package session turns an authenticated identity into the profile-bearing
// session the views work with.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"absensi/internal/identity"
	"absensi/internal/model"
)

// ErrProfileUnavailable means the profile could not be read. Callers treat
// the request as unauthenticated.
var ErrProfileUnavailable = errors.New("profile unavailable")

type ProfileReader interface {
	Profile(ctx context.Context, uid string) (*model.UserProfile, error)
}

// Source publishes auth-state changes.
type Source interface {
	Subscribe(fn func(context.Context, identity.Event)) func()
}

type Session struct {
	Identity identity.Identity
	Profile  *model.UserProfile
	Token    string
}

// View picks the screen to show: admins may ask for the admin dashboard,
// everyone else gets the check-in view.
func (s *Session) View(requested string) string {
	if requested == "admin" && s.Profile.IsAdmin() {
		return "admin"
	}
	return "attendance"
}

// DefaultCacheTTL bounds how long a stored profile is served before it
// is read from the store again.
const DefaultCacheTTL = 30 * time.Second

type ResolverOptions struct {
	Logger   *slog.Logger
	CacheTTL time.Duration
	Now      func() time.Time
}

type cachedProfile struct {
	profile *model.UserProfile
	expires time.Time
}

// Resolver keeps stored profiles of signed-in users warm for a short while.
// It follows the identity provider's auth-state events once started.
type Resolver struct {
	profiles ProfileReader
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedProfile
}

func NewResolver(profiles ProfileReader, opts ResolverOptions) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		profiles: profiles,
		logger:   opts.Logger,
		ttl:      opts.CacheTTL,
		now:      opts.Now,
		cache:    make(map[string]cachedProfile),
	}
}

// Start subscribes to src. The returned func unsubscribes and must be
// called on shutdown.
func (r *Resolver) Start(src Source) func() {
	return src.Subscribe(r.handle)
}

func (r *Resolver) handle(ctx context.Context, ev identity.Event) {
	switch ev.Kind {
	case identity.SignedIn:
		r.evict(ev.Identity.UID)
		if _, err := r.lookup(ctx, ev.Identity); err != nil {
			r.logger.ErrorContext(ctx, "profile fetch error", "uid", ev.Identity.UID, "error", err)
		}
	case identity.SignedOut:
		r.evict(ev.Identity.UID)
	}
}

// Resolve returns the session for id. A missing or malformed profile
// document yields the fallback profile; any other read error is logged and
// reported as ErrProfileUnavailable.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) (*Session, error) {
	profile, err := r.lookup(ctx, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "profile fetch error", "uid", id.UID, "error", err)
		return nil, ErrProfileUnavailable
	}
	return &Session{Identity: id, Profile: profile}, nil
}

// Invalidate drops the cached profile of uid, e.g. after it was rewritten.
func (r *Resolver) Invalidate(uid string) {
	r.evict(uid)
}

func (r *Resolver) lookup(ctx context.Context, id identity.Identity) (*model.UserProfile, error) {
	r.mu.RLock()
	cached, ok := r.cache[id.UID]
	r.mu.RUnlock()
	if ok && r.now().Before(cached.expires) {
		return cached.profile, nil
	}

	stored, err := r.profiles.Profile(ctx, id.UID)
	if errors.Is(err, model.ErrMalformed) {
		r.logger.WarnContext(ctx, "quarantined profile document", "uid", id.UID, "error", err)
		return model.FallbackProfile(id.UID, id.Email), nil
	}
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return model.FallbackProfile(id.UID, id.Email), nil
	}

	stored.UID = id.UID
	r.mu.Lock()
	r.cache[id.UID] = cachedProfile{profile: stored, expires: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return stored, nil
}

func (r *Resolver) evict(uid string) {
	r.mu.Lock()
	delete(r.cache, uid)
	r.mu.Unlock()
}
