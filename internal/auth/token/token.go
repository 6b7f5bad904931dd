// Package token issues and verifies the administrator bearer tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminTokenTTL = 12 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// AdminClaims is the verified identity carried by an admin bearer token.
type AdminClaims struct {
	AdminID  string
	Username string
}

// Issuer signs and verifies HS256 admin tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer builds an Issuer. Expiry is checked against the supplied time
// source so verification follows the application clock. When no secret is
// configured a random per-boot secret is generated, which invalidates admin
// tokens on restart.
func NewIssuer(secret string, now func() time.Time) (*Issuer, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		trimmed = hex.EncodeToString(buf)
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(trimmed), now: now}, nil
}

// Issue returns a signed bearer token for the admin account.
func (i *Issuer) Issue(adminID, username string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(adminTokenTTL)
	claims := jwt.MapClaims{
		"sub":  username,
		"aid":  adminID,
		"role": "ADMIN",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a bearer token and returns the admin identity it carries.
func (i *Issuer) Verify(raw string) (*AdminClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	if role != "ADMIN" {
		return nil, ErrInvalidToken
	}
	username, _ := claims["sub"].(string)
	adminID, _ := claims["aid"].(string)
	if username == "" || adminID == "" {
		return nil, ErrInvalidToken
	}

	return &AdminClaims{AdminID: adminID, Username: username}, nil
}
