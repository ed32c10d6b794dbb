package core

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialVerifierMD5(t *testing.T) {
	repo := newMemoryUserRepo()
	// md5("secret")
	_, err := repo.Upsert(context.Background(), "admin", "5ebe2294ecd0e0f08eab7690d2a6ee69")
	require.NoError(t, err)
	v := NewCredentialVerifier(repo, SchemeMD5)

	s, err := v.Verify(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, Session{User: "admin"}, s)

	_, err = v.Verify(context.Background(), "admin", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = v.Verify(context.Background(), "nobody", "secret")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = v.Verify(context.Background(), "", "")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestCredentialVerifierBcrypt(t *testing.T) {
	repo := newMemoryUserRepo()
	digest, err := PasswordDigest(SchemeBcrypt, "s3nha")
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), "secretaria", digest)
	require.NoError(t, err)
	v := NewCredentialVerifier(repo, SchemeBcrypt)

	s, err := v.Verify(context.Background(), "secretaria", "s3nha")
	require.NoError(t, err)
	assert.Equal(t, "secretaria", s.User)

	_, err = v.Verify(context.Background(), "secretaria", "S3NHA")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = v.Verify(context.Background(), "ghost", "s3nha")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestCredentialVerifierPropagatesStoreFailure(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.err = errors.New("connection refused")
	v := NewCredentialVerifier(repo, SchemeMD5)

	_, err := v.Verify(context.Background(), "admin", "secret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestPasswordDigest(t *testing.T) {
	d, err := PasswordDigest(SchemeMD5, "secret")
	require.NoError(t, err)
	assert.Equal(t, "5ebe2294ecd0e0f08eab7690d2a6ee69", d)

	_, err = PasswordDigest(SchemeMD5, "")
	assert.Error(t, err)

	_, err = PasswordDigest("sha1", "secret")
	assert.Error(t, err)
}

func TestGeneratePassword(t *testing.T) {
	p, err := generatePassword(24)
	require.NoError(t, err)
	assert.Len(t, p, 24)

	q, err := generatePassword(24)
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
}
