package core

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Session is the identity carried by the signed session cookie.
type Session struct {
	User string `json:"usuario"`
}

// Anonymous reports whether the session carries no identity.
func (s Session) Anonymous() bool {
	return strings.TrimSpace(s.User) == ""
}

var (
	// ErrInvalidCredentials is returned when login/password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned by the guard when no valid session is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidSession is returned when a session token fails verification.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLoginThrottled is returned while a login is locked out after repeated failures.
	ErrLoginThrottled = errors.New("too many failed logins")
)

// AuthService defines authentication behaviour.
type AuthService interface {
	Verify(ctx context.Context, login, password string) (Session, error)
}

// CredentialVerifier checks login/password pairs against stored digests.
type CredentialVerifier struct {
	users  UserRepository
	scheme string
}

func NewCredentialVerifier(users UserRepository, scheme string) *CredentialVerifier {
	return &CredentialVerifier{users: users, scheme: scheme}
}

// Verify returns the session for a matching pair and ErrInvalidCredentials otherwise.
// Unknown logins and wrong passwords are indistinguishable to the caller; only
// infrastructure failures come back as other errors.
func (v *CredentialVerifier) Verify(ctx context.Context, login, password string) (Session, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	var (
		u   *UserRecord
		err error
	)
	switch v.scheme {
	case SchemeBcrypt:
		u, err = v.users.FindByLogin(ctx, login)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(password)) != nil {
			return Session{}, ErrInvalidCredentials
		}
	default:
		// legacy digests: login and digest are matched by the same lookup
		u, err = v.users.FindByCredentials(ctx, login, md5Hex(password))
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, errors.Wrap(err, "verify credentials")
	}
	return Session{User: u.Login}, nil
}
