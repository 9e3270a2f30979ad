package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clinicore/platform/internal/identity"
)

// ActorClaims is the token payload for platform users. The subject is the
// actor id; clinic_id is present only on employee tokens.
type ActorClaims struct {
	Role     string `json:"role"`
	ClinicID string `json:"clinic_id,omitempty"`
	jwt.RegisteredClaims
}

// ActorJWT enforces an HMAC-signed JWT and attaches the resolved actor to
// the request context. An employee token without a clinic claim is let
// through; the scheduling policy rejects it as a configuration error so
// the account problem is reported distinctly from a plain 403.
func ActorJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := ActorClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

func actorFromClaims(claims ActorClaims) (identity.Actor, error) {
	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return identity.Actor{}, err
	}
	role := identity.Role(claims.Role)
	if !role.Valid() {
		return identity.Actor{}, jwt.ErrTokenInvalidClaims
	}
	actor := identity.Actor{ID: actorID, Role: role}
	if claims.ClinicID != "" {
		clinicID, err := uuid.Parse(claims.ClinicID)
		if err != nil {
			return identity.Actor{}, err
		}
		actor.ClinicID = clinicID
	}
	return actor, nil
}
