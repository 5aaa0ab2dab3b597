// internal/httpserver/auth.go
//
// API authentication.
// Responsibilities:
//   - Exchange the shared API key for a signed JWT (POST /api/auth/token).
//   - Guard /api/games routes with an HS256 bearer token.
//
// Notes:
//   - The key itself is never stored; API_KEY_HASH holds its bcrypt hash.
//   - When API_KEY_HASH is unset the token endpoint is disabled and tokens
//     have to be minted out of band with JWT_SECRET.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"
)

type tokenReq struct {
	Key string `json:"key"`
}

type tokenRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.cfg.APIKeyHash == "" {
		notFound(w, r)
		return
	}
	var req tokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(s.cfg.APIKeyHash), []byte(req.Key)) != nil {
		hlog.FromRequest(r).Warn().Msg("rejected api key")
		writeErrors(w, http.StatusUnauthorized, "Invalid API key")
		return
	}
	token, exp, err := s.signJWT()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: token, ExpiresAt: exp})
}

// signJWT issues an HS256 token valid for JWT_EXPIRES_DAYS.
func (s *Server) signJWT() (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "api",
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp.Truncate(time.Second), err
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	secret := []byte(s.cfg.JWTSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				writeErrors(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			_, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("invalid token")
				writeErrors(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	a := r.Header.Get("Authorization")
	if len(a) < 7 || !strings.EqualFold(a[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(a[7:])
}
