package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

type contextKey struct{ name string }

var principalKey = &contextKey{"principal"}

// authClaims are the token claims the identity provider issues: the user id
// in the subject and the email as a private claim.
type authClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator validates the Authorization bearer token and injects the
// resulting principal into the request context. Requests without a valid
// token get 401.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Missing authorization token", nil)
				return
			}

			claims := &authClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid authorization token", nil)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil || claims.Email == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token claims", nil)
				return
			}

			principal := domain.Principal{ID: userID, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		})
	}
}

// PrincipalFromContext returns the authenticated principal stored by
// Authenticator.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

// IssueToken signs a token for the given principal. Used by the dev login
// helper and the tests; real deployments receive tokens from the identity
// provider.
func IssueToken(secret []byte, principal domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Email: principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
