package password_test

import (
	"otabridge/shared/password"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{name: "message password", secret: "wincloud-s3cret"},
		{name: "special characters", secret: "P@ssw0rd!#$%^&*()"},
		{name: "empty", secret: "", wantErr: password.ErrEmptyPassword},
		{name: "longer than bcrypt allows", secret: strings.Repeat("a", 100), wantErr: password.ErrHashingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
			assert.NoError(t, password.Verify(tt.secret, hash))
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("wincloud-s3cret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		hash    string
		wantErr error
	}{
		{name: "match", secret: "wincloud-s3cret", hash: hash},
		{name: "mismatch", secret: "guess", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty secret", secret: "", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty hash", secret: "wincloud-s3cret", hash: "", wantErr: password.ErrInvalidPassword},
		{name: "malformed hash", secret: "wincloud-s3cret", hash: "not-a-hash", wantErr: password.ErrVerifyingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.secret, tt.hash)

			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("same")
	require.NoError(t, err)

	second, err := password.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
