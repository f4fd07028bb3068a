package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew refreshes slightly early so a token does not expire while a
// request carrying it is in flight.
const expirySkew = 10 * time.Second

var unverifiedParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// tokenExpired peeks at the JWT exp claim without verifying the
// signature; only the backend can verify. Tokens that do not parse or
// carry no expiry are reported as live, leaving the 401 path to decide.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.Add(expirySkew).After(claims.ExpiresAt.Time)
}
