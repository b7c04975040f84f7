package middlewares

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/agora/internal/http/errors"
)

// RequireAuth valida Authorization: Bearer <JWT> (HS256) y guarda el actor
// en el contexto. Si el token es inválido o no está presente, responde 401.
func RequireAuth(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid.WithDetail(err.Error()))
				return
			}

			sub, _ := claims.GetSubject()
			if sub == "" {
				errors.WriteError(w, errors.ErrTokenInvalid.WithDetail("missing sub claim"))
				return
			}

			ctx := WithActorID(r.Context(), sub)
			if email, ok := claims["email"].(string); ok && email != "" {
				ctx = WithActorEmail(ctx, email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor verifica que haya un actor autenticado en el contexto.
// Debe usarse después de RequireAuth.
func RequireActor() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetActorID(r.Context()) == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
