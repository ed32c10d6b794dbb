package core

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordDigest returns the stored form of password under scheme.
func PasswordDigest(scheme, password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	switch scheme {
	case SchemeMD5:
		return md5Hex(password), nil
	case SchemeBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", errors.Wrap(err, "bcrypt")
		}
		return string(hash), nil
	default:
		return "", errors.Errorf("unknown password scheme %q", scheme)
	}
}

// md5Hex is the unsalted digest already stored for existing staff accounts.
func md5Hex(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	// base64 encoding: need 3/4 overhead; ensure enough bytes
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
