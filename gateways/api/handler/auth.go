package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joeleesuh/delegate-ai/pkg/json"
)

// requireProcessToken guards the processing trigger with an HMAC-signed
// bearer token when PROCESS_SECRET is configured. Without a secret the
// endpoint stays open, matching the demo mode of the other components.
func (h *Handler) requireProcessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.processSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || raw == "" {
			h.log.Warn("missing bearer token on process request")
			json.WriteError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.processSecret), nil
		})
		if err != nil || !token.Valid {
			h.log.Warn("invalid bearer token on process request")
			json.WriteError(w, http.StatusUnauthorized, errors.New("invalid bearer token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
