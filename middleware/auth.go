package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/clashcup/clanwar-tournament/services"
	"github.com/golang-jwt/jwt/v4"
)

// AdminAuth guards mutating routes. A request is admitted with either a valid
// X-Admin-Password header or a bearer token minted by POST /auth/login.
func AdminAuth(authService services.AuthService, jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if password := r.Header.Get("X-Admin-Password"); password != "" {
				if err := authService.VerifyAdminPassword(password); err != nil {
					unauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w)
				return
			}

			role, _ := claims["role"].(string)
			if role != "admin" {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"admin authentication required"}` + "\n"))
}
