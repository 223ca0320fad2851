package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SecretBox encrypts small secrets (pending TOTP secrets) before they touch
// the database. AES-256-GCM with a per-value random nonce; the key is derived
// from operator-supplied master key material via HKDF so short or low-entropy
// inputs still yield a full-width key.
type SecretBox struct {
	key []byte
}

const secretBoxInfo = "tradegate/secretbox/v1"

// NewSecretBox derives an AES-256 key from the given master key material.
// The material can come from a key file or environment variable; it must not
// be empty.
func NewSecretBox(material []byte) (*SecretBox, error) {
	if len(material) == 0 {
		return nil, fmt.Errorf("cryptox: empty master key material")
	}

	kdf := hkdf.New(sha256.New, material, nil, []byte(secretBoxInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("cryptox: key derivation failed: %w", err)
	}

	return &SecretBox{key: key}, nil
}

// Seal encrypts plaintext and returns a base64url string in the format
// [12-byte nonce][ciphertext][16-byte auth tag].
func (b *SecretBox) Seal(plaintext string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	// gcm.Seal appends the ciphertext and auth tag to nonce
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal, verifying the authentication tag.
func (b *SecretBox) Open(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("cryptox: malformed sealed value: %w", err)
	}

	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("cryptox: sealed value too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("cryptox: decryption failed: %w", err)
	}

	return string(plaintext), nil
}

func (b *SecretBox) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}

	return gcm, nil
}
