package app

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

var claimsParser = jwt.NewParser()

// DecodeClaims reads the payload segment of a JWT without checking its
// signature or looking at its header. The front-end never verifies tokens,
// it only reads the role and subject the backend put there. Failure is soft:
// a warning is logged and ok is false.
func DecodeClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, claimsFailed(errors.New("token has no payload segment"))
	}
	raw, err := claimsParser.DecodeSegment(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, claimsFailed(err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, claimsFailed(err)
	}
	return claims, true
}

func claimsFailed(err error) bool {
	log.Warn().Err(err).Msg("session: failed to decode token claims")
	observability.ObserveSession("decode_failed")
	return false
}

// RoleFromToken returns the upper-cased "role" claim, or "" when absent.
func RoleFromToken(token string) domain.Role {
	claims, ok := DecodeClaims(token)
	if !ok {
		return ""
	}
	r, _ := claims["role"].(string)
	return domain.Role(strings.ToUpper(strings.TrimSpace(r)))
}

// SubjectFromToken returns the "sub" claim (the username).
func SubjectFromToken(token string) string {
	claims, ok := DecodeClaims(token)
	if !ok {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
