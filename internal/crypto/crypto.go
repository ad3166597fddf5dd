// Package crypto seals session secrets at rest with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// SaltSize is the length of the random salt used by DeriveKey.
	SaltSize = 16
)

// scrypt cost parameters; N=2^15 keeps derivation under ~100ms on a laptop.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	ErrInvalidKeySize     = errors.New("encryption key must be 32 bytes for AES-256")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrDecryptionFailed   = errors.New("decryption failed: authentication error")
	ErrEmptyPassphrase    = errors.New("passphrase must not be empty")
)

// Encryptor seals and opens values with a fixed key. Safe for concurrent use.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor builds an Encryptor from a raw 32-byte key.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// NewEncryptorFromBase64 builds an Encryptor from a base64-encoded key.
func NewEncryptorFromBase64(encodedKey string) (*Encryptor, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}
	return NewEncryptor(key)
}

// NewEncryptorFromPassphrase derives the key with DeriveKey.
func NewEncryptorFromPassphrase(passphrase string, salt []byte) (*Encryptor, error) {
	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return NewEncryptor(key)
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
// associated is authenticated but not stored; Open must be given the same value.
func (e *Encryptor) Seal(plaintext []byte, associated string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, plaintext, []byte(associated))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (e *Encryptor) Open(encoded, associated string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	ns := e.aead.NonceSize()
	if len(sealed) < ns+e.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := e.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(associated))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// DeriveKey stretches a passphrase into an AES-256 key with scrypt.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// GenerateKey returns a random base64-encoded AES-256 key.
func GenerateKey() (string, error) {
	key, err := randomBytes(KeySize)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// GenerateSalt returns SaltSize random bytes for DeriveKey.
func GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
