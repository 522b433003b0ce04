package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks values that have been encrypted by this package.
// Values without the prefix pass through Open unchanged, so plaintext
// keys in a dev config keep working.
const sealedPrefix = "enc:"

var errCipherTooShort = errors.New("sealed value too short")

// Box encrypts and decrypts short secrets (provider API keys) with
// nacl/secretbox. The key comes from the app config and never leaves
// the process.
type Box struct {
	key [32]byte
}

// NewBox derives a Box from a base64-encoded 32-byte key. An empty key
// yields a nil Box, which stores secrets unencrypted.
func NewBox(encodedKey string) (*Box, error) {
	trimmed := strings.TrimSpace(encodedKey)
	if trimmed == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}
	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

// Seal encrypts a plaintext secret. Already-sealed values and empty
// strings are returned unchanged.
func (b *Box) Seal(plain string) (string, error) {
	if b == nil || plain == "" || strings.HasPrefix(plain, sealedPrefix) {
		return plain, nil
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed secret. Values without the sealed prefix are
// returned as-is.
func (b *Box) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if b == nil {
		return "", errors.New("sealed value but no secret key configured")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < 24 {
		return "", errCipherTooShort
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &b.key)
	if !ok {
		return "", errors.New("sealed value failed to decrypt")
	}
	return string(plain), nil
}
