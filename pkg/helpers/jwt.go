package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token roles. Each role is signed and verified with its own secret so a
// leaked user secret cannot mint admin tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrTokenInvalid covers bad signatures, malformed payloads, wrong
	// signing method and role mismatches.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned once the wall clock passes expires_at.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnknownRole is returned when issuing with a role outside {user, admin}.
	ErrUnknownRole = errors.New("unknown token role")
)

// TokenManager issues and verifies signed, expiring bearer tokens carrying
// a role claim. There is no revocation; compromise recovery is secret
// rotation, which invalidates all outstanding tokens of that role at once.
type TokenManager struct {
	UserSecret  []byte
	AdminSecret []byte
	UserTTL     time.Duration
	AdminTTL    time.Duration
}

func NewTokenManager(userSecret, adminSecret string, userTTL, adminTTL time.Duration) *TokenManager {
	return &TokenManager{
		UserSecret:  []byte(userSecret),
		AdminSecret: []byte(adminSecret),
		UserTTL:     userTTL,
		AdminTTL:    adminTTL,
	}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m *TokenManager) secretAndTTL(role string) ([]byte, time.Duration, error) {
	switch role {
	case RoleUser:
		return m.UserSecret, m.UserTTL, nil
	case RoleAdmin:
		return m.AdminSecret, m.AdminTTL, nil
	}
	return nil, 0, ErrUnknownRole
}

// Issue mints a token for subject with the given role, signed with that
// role's secret and expiring after that role's TTL.
func (m *TokenManager) Issue(subject, role string) (string, time.Time, error) {
	secret, ttl, err := m.secretAndTTL(role)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

// Verify parses tokenStr against expectedRole's secret exclusively and
// rejects tokens whose embedded role claim differs. Cross-role acceptance
// is a security defect, never a convenience.
func (m *TokenManager) Verify(tokenStr, expectedRole string) (*Claims, error) {
	secret, _, err := m.secretAndTTL(expectedRole)
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid || claims.Role != expectedRole {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
