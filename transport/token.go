package transport

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrTokenExpired = errors.New("backend token expired")

// checkToken rejects JWT bearer tokens whose exp claim lies in the past.
// The signature is not verified; that is the backend's job. Opaque tokens
// pass unchanged.
func checkToken(token string, now time.Time) error {
	if strings.Count(token, ".") != 2 {
		return nil
	}
	claims := jwt.StandardClaims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if !claims.VerifyExpiresAt(now.Unix(), false) {
		return ErrTokenExpired
	}
	return nil
}
