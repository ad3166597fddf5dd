package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor(t *testing.T) {
	t.Run("valid key size", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, KeySize))
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("invalid key size - too short", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, 16))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, enc)
	})

	t.Run("invalid key size - too long", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, 64))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, enc)
	})
}

func TestNewEncryptorFromBase64(t *testing.T) {
	t.Run("generated key", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)
		enc, err := NewEncryptorFromBase64(key)
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("invalid base64", func(t *testing.T) {
		enc, err := NewEncryptorFromBase64("not-valid-base64!!!")
		assert.Error(t, err)
		assert.Nil(t, enc)
	})

	t.Run("valid base64 but wrong size", func(t *testing.T) {
		enc, err := NewEncryptorFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 16)))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, enc)
	})
}

func TestSealOpen(t *testing.T) {
	enc, err := NewEncryptor(bytes.Repeat([]byte{7}, KeySize))
	require.NoError(t, err)

	plaintext := []byte("session-id=123-4567890; at-main=Atza|secret")

	sealed, err := enc.Seal(plaintext, "com")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret")

	opened, err := enc.Open(sealed, "com")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	t.Run("nonce differs per call", func(t *testing.T) {
		again, err := enc.Seal(plaintext, "com")
		require.NoError(t, err)
		assert.NotEqual(t, sealed, again)
	})

	t.Run("associated data must match", func(t *testing.T) {
		_, err := enc.Open(sealed, "co.jp")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewEncryptor(bytes.Repeat([]byte{8}, KeySize))
		require.NoError(t, err)
		_, err = other.Open(sealed, "com")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := enc.Open(base64.StdEncoding.EncodeToString([]byte("short")), "com")
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := enc.Open("%%%", "com")
		assert.Error(t, err)
	})
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	a, err := DeriveKey("correct horse", salt)
	require.NoError(t, err)
	assert.Len(t, a, KeySize)

	b, err := DeriveKey("correct horse", salt)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := DeriveKey("correct horse", []byte("fedcba9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = DeriveKey("", salt)
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestPassphraseEncryptorRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	enc, err := NewEncryptorFromPassphrase("hunter2", salt)
	require.NoError(t, err)
	sealed, err := enc.Seal([]byte("x"), "")
	require.NoError(t, err)

	same, err := NewEncryptorFromPassphrase("hunter2", salt)
	require.NoError(t, err)
	opened, err := same.Open(sealed, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), opened)
}
