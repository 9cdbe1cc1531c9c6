package utils // helpers for admin token creation and verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminToken is a short-lived signed token issued after a successful
// shared-secret check. It lets the dashboard keep calling admin endpoints
// without resending the code on every request. The role claim is either
// "admin" or "analyst".
type AdminToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiration time
}

var errInvalidAdminToken = errors.New("invalid admin token")

// NewAdminToken builds and signs an HS256 JWT carrying the role claim.
func NewAdminToken(secret, role string, ttlMin int) (AdminToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AdminToken{}, err
	}
	return AdminToken{Token: signed, Exp: exp}, nil
}

// ParseAdminToken validates a signed admin token and returns its role
// claim. Tokens signed with anything other than HMAC are rejected.
func ParseAdminToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidAdminToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", errInvalidAdminToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidAdminToken
	}
	role, ok := claims["role"].(string)
	if !ok || (role != "admin" && role != "analyst") {
		return "", errInvalidAdminToken
	}
	return role, nil
}
