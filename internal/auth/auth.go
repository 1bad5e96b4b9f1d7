// Package auth issues and validates bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KindAdmin  = "admin"
	KindMember = "member"
)

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Config holds signer parameters.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims is the normalized payload of a token.
type Claims struct {
	Subject   uint
	Kind      string
	Role      string
	GymID     *uint
	ExpiresAt time.Time
}

func (c *Claims) IsSuperAdmin() bool {
	return c != nil && c.Kind == KindAdmin && c.Role == "super_admin"
}

// CanAccessGym reports whether an admin token may act on the given gym.
func (c *Claims) CanAccessGym(gymID uint) bool {
	if c == nil || c.Kind != KindAdmin {
		return false
	}
	if c.IsSuperAdmin() {
		return true
	}
	return c.GymID != nil && *c.GymID == gymID
}

type tokenClaims struct {
	Kind  string `json:"kind"`
	Role  string `json:"role,omitempty"`
	GymID *uint  `json:"gym_id,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 JWTs.
type Tokens struct {
	cfg Config
	now func() time.Time
}

func NewTokens(cfg Config) *Tokens {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}
}

// Issue signs a token for the given subject.
func (t *Tokens) Issue(c Claims) (string, time.Time, error) {
	if c.Kind != KindAdmin && c.Kind != KindMember {
		return "", time.Time{}, fmt.Errorf("unknown token kind %q", c.Kind)
	}
	now := t.now()
	exp := now.Add(t.cfg.TTL)
	tc := tokenClaims{
		Kind:  c.Kind,
		Role:  c.Role,
		GymID: c.GymID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(c.Subject), 10),
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates a JWT and returns normalized claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := strconv.ParseUint(tc.Subject, 10, 64)
	if err != nil || subject == 0 {
		return nil, ErrInvalidToken
	}
	if tc.Kind != KindAdmin && tc.Kind != KindMember {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:   uint(subject),
		Kind:      tc.Kind,
		Role:      tc.Role,
		GymID:     tc.GymID,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(header[len("Bearer "):]), nil
}
