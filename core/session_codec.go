package core

import (
	"encoding/base64"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
)

// SessionCookieName is the cookie carrying the encoded Session.
const SessionCookieName = "session"

// SessionCodec signs and verifies session tokens with an HMAC over the
// process-wide secret. Tokens are authenticated, not encrypted.
type SessionCodec struct {
	sc *securecookie.SecureCookie
}

// NewSessionCodec builds a codec from the signing secret.
func NewSessionCodec(secret []byte) (*SessionCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty session secret")
	}
	sc := securecookie.New(secret, nil).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(0) // the session lives as long as the browser keeps the cookie
	return &SessionCodec{sc: sc}, nil
}

// Encode returns the signed token for s.
func (c *SessionCodec) Encode(s Session) (string, error) {
	if s.Anonymous() {
		return "", errors.New("cannot encode anonymous session")
	}
	token, err := c.sc.Encode(SessionCookieName, s)
	if err != nil {
		return "", errors.Wrap(err, "encode session")
	}
	return token, nil
}

// Decode verifies token and returns the embedded session. Any failure is
// reported as ErrInvalidSession.
func (c *SessionCodec) Decode(token string) (Session, error) {
	// securecookie decodes leniently and ignores trailing bits of the last
	// base64 quantum; only canonical tokens are accepted here.
	if _, err := base64.URLEncoding.Strict().DecodeString(token); err != nil {
		return Session{}, errors.Wrap(ErrInvalidSession, "malformed token")
	}
	var s Session
	if err := c.sc.Decode(SessionCookieName, token, &s); err != nil {
		return Session{}, errors.Wrap(ErrInvalidSession, err.Error())
	}
	if s.Anonymous() {
		return Session{}, errors.Wrap(ErrInvalidSession, "empty identity")
	}
	return s, nil
}
