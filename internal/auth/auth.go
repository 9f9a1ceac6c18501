package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/supabase-community/supabase-go"
)

const UserIDHeader = "X-User-ID"

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type ctxKey struct{}

// Identifier resolves the user behind a request.
type Identifier interface {
	Identify(r *http.Request) (string, error)
}

// SupabaseIdentifier validates bearer tokens against Supabase Auth.
type SupabaseIdentifier struct {
	lookup func(token string) (string, error)
}

func NewSupabaseIdentifier(url, anonKey string) (*SupabaseIdentifier, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseIdentifier{
		// GetUser does not take a context when chained with WithToken.
		lookup: func(token string) (string, error) {
			user, err := client.Auth.WithToken(token).GetUser()
			if err != nil {
				return "", err
			}
			return user.ID.String(), nil
		},
	}, nil
}

func (s *SupabaseIdentifier) Identify(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", ErrMissingCredentials
	}
	userID, err := s.lookup(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// HeaderIdentifier trusts the X-User-ID header. Local development only.
type HeaderIdentifier struct{}

func (HeaderIdentifier) Identify(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		return "", ErrMissingCredentials
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Middleware rejects unidentified requests with 401 and stores the user ID
// in the request context.
func Middleware(id Identifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := id.Identify(r)
			if err != nil {
				if !errors.Is(err, ErrMissingCredentials) {
					logger.Warn("authentication failed", "path", r.URL.Path, "error", err)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}
