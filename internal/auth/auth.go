package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session tokens replace the legacy caller-supplied admin id. A token is
// "uid.sig" where sig is HMAC-SHA256 over the uid under SESSION_SECRET.
// The token carries identity only; the role is re-read from the database on
// every admin-gated request so a deleted or demoted user loses access
// immediately.

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
)

// RoleResolver validates that a token's user still exists and returns its
// role. Set during app bootstrap via SetRoleResolver.
type RoleResolver func(ctx context.Context, uid uint) (string, bool)

var resolver RoleResolver

// SetRoleResolver configures the resolver used by RequireAdmin.
func SetRoleResolver(r RoleResolver) { resolver = r }

// Secret returns SESSION_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(uidStr string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(uidStr))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// TokenFor returns the signed session token for a user id.
func TokenFor(userID uint) string {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	return uidStr + "." + sign(uidStr)
}

// ParseToken validates a token and returns the user id it carries.
func ParseToken(token string) (uint, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return 0, false
	}
	uidStr, sig := parts[0], parts[1]
	if !hmac.Equal([]byte(sig), []byte(sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// CreateSession sets the session cookie with the signed token.
func CreateSession(w http.ResponseWriter, userID uint) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    TokenFor(userID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// TokenFromRequest extracts the session token from the Authorization header
// (Bearer scheme) or the session cookie, in that order.
func TokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok && tok != "" {
			return tok, true
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// ParseSession validates the request's token and returns the user id.
func ParseSession(r *http.Request) (uint, bool) {
	tok, ok := TokenFromRequest(r)
	if !ok {
		return 0, false
	}
	return ParseToken(tok)
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches user id to request context if a valid token is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseSession(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid session (401 JSON).
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			writeJSONError(w, http.StatusUnauthorized, "nao_autenticado")
			return
		}
		if resolver != nil {
			if _, exists := resolver(r.Context(), uid); !exists {
				ClearSession(w)
				writeJSONError(w, http.StatusUnauthorized, "nao_autenticado")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose session user is missing (401) or not an
// admin (403).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			writeJSONError(w, http.StatusUnauthorized, "nao_autenticado")
			return
		}
		if resolver == nil {
			writeJSONError(w, http.StatusForbidden, "apenas_administradores")
			return
		}
		role, exists := resolver(r.Context(), uid)
		if !exists {
			ClearSession(w)
			writeJSONError(w, http.StatusUnauthorized, "nao_autenticado")
			return
		}
		if role != "admin" {
			writeJSONError(w, http.StatusForbidden, "apenas_administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Local JSON error writer; this package must not import httpx.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
