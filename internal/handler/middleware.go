package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"absensi/internal/i18n"
	"absensi/internal/identity"
	"absensi/internal/service"
	"absensi/internal/session"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "absensi_session"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// LoggingMiddleware logs one line per request and tags the response with a
// request id.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

// LocaleMiddleware picks the message locale from Accept-Language.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.Match(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
	})
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// SessionMiddleware resolves the caller's session into the request context.
// It never rejects a request; handlers decide what an absent session means.
func SessionMiddleware(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := auth.Authenticate(r.Context(), tokenFromRequest(r))
			switch {
			case err == nil:
				r = r.WithContext(session.WithSession(r.Context(), sess))
			case errors.Is(err, service.ErrNoSession):
			case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrTokenRevoked):
				logger.DebugContext(r.Context(), "rejected session token", "error", err)
			default:
				logger.WarnContext(r.Context(), "session not resolved", "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession answers 401 when the request carries no session.
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()) == nil {
			writeError(w, r, service.ErrNoSession)
			return
		}
		next(w, r)
	}
}

// RequireAdmin answers 401 without a session and 403 for non-admin profiles.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireSession(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Profile.IsAdmin() {
			writeError(w, r, errForbidden)
			return
		}
		next(w, r)
	})
}

// tokenFromRequest reads a bearer token, then the session cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Wrap applies the middleware shared by every route.
func Wrap(next http.Handler, auth Authenticator, logger *slog.Logger) http.Handler {
	return LoggingMiddleware(LocaleMiddleware(SessionMiddleware(auth, logger)(next)))
}
