package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token expired")
	ErrUnknownRole  = errors.New("unknown role in access token")
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleCoach Role = "COACH"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleCoach:
		return RoleCoach, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Session is the identity the cache is scoped to. It is derived from the
// access token issued at login; the token itself stays opaque to the
// rest of the code.
type Session struct {
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// FromToken extracts the signed-in identity from an access token. The
// signature is not verified: the client never holds the signing key,
// and the server re-checks the token on every request. Expiry is
// checked so the caller can redirect to re-authentication before
// starting a bootstrap that would fail anyway.
func FromToken(token string) (*Session, error) {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}

	sess := &Session{
		UserID: claims.UserID,
		Role:   role,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}

	return sess, nil
}
