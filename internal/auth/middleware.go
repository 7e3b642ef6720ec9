package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type ctxKey string

const tierKey ctxKey = "tier"

// Middleware resolves the caller's tier from the Authorization header or a
// "token" form field. Requests without a token continue as free tier. An
// invalid bearer token is rejected; an unrecognised form token only means
// the free tier, as the upload form has always accepted any token.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if token := extractBearerToken(req); token != "" {
			tier, err := r.Resolve(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, req.WithContext(WithTier(req.Context(), tier)))
			return
		}

		tier, err := r.Resolve(formToken(req))
		if err != nil {
			slog.Info("unrecognised form token, using free tier", "error", err)
			tier = TierFree
		}

		next.ServeHTTP(w, req.WithContext(WithTier(req.Context(), tier)))
	})
}

func WithTier(ctx context.Context, t Tier) context.Context {
	return context.WithValue(ctx, tierKey, t)
}

// TierFromContext defaults to TierFree.
func TierFromContext(ctx context.Context) Tier {
	if t, ok := ctx.Value(tierKey).(Tier); ok {
		return t
	}
	return TierFree
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// formToken reads the token field of urlencoded and multipart bodies.
func formToken(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return ""
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return ""
		}
	default:
		return r.URL.Query().Get("token")
	}
	return r.FormValue("token")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
