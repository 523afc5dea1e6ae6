// Package encryption seals questionnaire payloads before they are stored.
// Ciphertexts carry a scheme prefix so a provider can refuse data it did
// not produce.
package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInsecureProviderInProduction = errors.New("insecure dev encryption is not allowed in production")
	ErrNoProvider                   = errors.New("no encryption provider configured")
	ErrUnknownProvider              = errors.New("unknown encryption provider")
	ErrSchemeMismatch               = errors.New("ciphertext was not produced by this provider")
	ErrMalformedCiphertext          = errors.New("malformed ciphertext")
)

// Provider encrypts and decrypts opaque blobs.
type Provider interface {
	Encrypt(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, ciphertext string) ([]byte, error)
	Name() string
}

// Provider names accepted by Settings.Provider.
const (
	ProviderKMS   = "kms"
	ProviderLocal = "local"
	ProviderDev   = "dev"
)

type Settings struct {
	// Provider selects kms, local or dev. Empty picks the strongest one the
	// remaining settings allow.
	Provider    string
	Production  bool
	KMSKeyID    string
	KMSToken    string
	KMSEndpoint string
	LocalSecret string
	HTTPClient  *http.Client
}

// New builds the configured provider. It never downgrades: a requested
// provider that cannot be built is an error.
func New(s Settings) (Provider, error) {
	name := s.Provider
	if name == "" {
		switch {
		case s.KMSKeyID != "":
			name = ProviderKMS
		case s.LocalSecret != "":
			name = ProviderLocal
		case !s.Production:
			name = ProviderDev
		default:
			return nil, ErrNoProvider
		}
	}

	switch name {
	case ProviderKMS:
		client := s.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 10 * time.Second}
		}
		return NewKMSProvider(s.KMSKeyID, s.KMSToken, s.KMSEndpoint, client)
	case ProviderLocal:
		return NewLocalProvider(s.LocalSecret)
	case ProviderDev:
		if s.Production {
			return nil, ErrInsecureProviderInProduction
		}
		return InsecureDevProvider{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// Scheme returns the scheme prefix of a stored ciphertext, e.g. "aes:v1".
func Scheme(ciphertext string) string {
	switch {
	case strings.HasPrefix(ciphertext, kmsPrefix):
		return strings.TrimSuffix(kmsPrefix, ":")
	case strings.HasPrefix(ciphertext, aesPrefix):
		return strings.TrimSuffix(aesPrefix, ":")
	case strings.HasPrefix(ciphertext, devPrefix):
		return strings.TrimSuffix(devPrefix, ":")
	}
	return ""
}

func seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(key, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, ErrMalformedCiphertext
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	out, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return out, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
