// Package access decides who may mutate content and how much of a gated
// personal text a reader gets to see.
package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"diarioweb/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = time.Hour

// Credentials describe the single owner account. They are fixed at startup.
type Credentials struct {
	Username      string
	PasswordHash  string // bcrypt
	SigningSecret []byte
	TokenTTL      time.Duration
}

// AuthContext is the identity proven by a verified token. Owner-only
// handlers receive it as an argument.
type AuthContext struct {
	Name string
}

type Gate struct {
	creds Credentials
	now   func() time.Time
}

type Option func(*Gate)

// WithClock overrides the time source used to issue and verify tokens.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(creds Credentials, opts ...Option) (*Gate, error) {
	if creds.Username == "" {
		return nil, errors.New("access: owner username is empty")
	}
	if _, err := bcrypt.Cost([]byte(creds.PasswordHash)); err != nil {
		return nil, fmt.Errorf("access: owner password hash is not a bcrypt hash: %w", err)
	}
	if len(creds.SigningSecret) == 0 {
		return nil, errors.New("access: signing secret is empty")
	}
	if creds.TokenTTL <= 0 {
		creds.TokenTTL = DefaultTokenTTL
	}

	g := &Gate{creds: creds, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Owner returns the configured owner username.
func (g *Gate) Owner() string {
	return g.creds.Username
}

// Authenticate checks the owner's username and password and issues a
// signed token valid for the configured window. A wrong username and a
// wrong password fail the same way.
func (g *Gate) Authenticate(username, password string) (string, error) {
	// The hash comparison always runs so both failures cost the same.
	hashErr := bcrypt.CompareHashAndPassword([]byte(g.creds.PasswordHash), []byte(password))
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.creds.Username)) == 1
	if !userOK || hashErr != nil {
		return "", apperror.ErrInvalidCredentials
	}
	return g.issue(username)
}

// Authorize verifies a bearer token and returns the identity it carries.
// An empty token is ErrUnauthenticated; anything that fails verification is
// ErrInvalidToken.
func (g *Gate) Authorize(token string) (AuthContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AuthContext{}, apperror.ErrUnauthenticated
	}
	name, err := g.verify(token)
	if err != nil {
		return AuthContext{}, fmt.Errorf("%w: %v", apperror.ErrInvalidToken, err)
	}
	return AuthContext{Name: name}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// claims carries only the identity name; there is one identity and no roles.
type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (g *Gate) issue(name string) (string, error) {
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.creds.TokenTTL)),
		},
	})
	signed, err := token.SignedString(g.creds.SigningSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (g *Gate) verify(tokenString string) (string, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		return g.creds.SigningSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token is not valid")
	}
	if c.Name == "" {
		return "", errors.New("token has no name claim")
	}
	return c.Name, nil
}
