package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: bad signature,
// wrong algorithm, expired, or a malformed subject.
var ErrInvalidToken = errors.New("invalid session token")

const defaultLeeway = 30 * time.Second

// Verifier validates HS256 session tokens issued by the auth provider
// and extracts the user id from the sub claim.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifier creates a verifier for the given shared signing secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), leeway: defaultLeeway}
}

// UserID verifies the token and returns the authenticated user's id
func (v *Verifier) UserID(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
