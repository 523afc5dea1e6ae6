package encryption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const aesPrefix = "aes:v1:"

// argon2id parameters for deriving the local key. Changing them changes the
// key, so stored ciphertexts would no longer open.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLen       = 32
)

var localSalt = []byte("arc-local-encryption/v1")

// LocalProvider seals with AES-256-GCM under a key derived from a secret.
type LocalProvider struct {
	key []byte
}

func NewLocalProvider(secret string) (*LocalProvider, error) {
	if len(secret) < 16 {
		return nil, errors.New("local encryption secret must be at least 16 characters")
	}
	return &LocalProvider{key: argon2.IDKey([]byte(secret), localSalt, argonTime, argonMemory, argonThreads, keyLen)}, nil
}

func (p *LocalProvider) Name() string { return ProviderLocal }

func (p *LocalProvider) Encrypt(_ context.Context, plaintext []byte) (string, error) {
	sealed, err := seal(p.key, plaintext)
	if err != nil {
		return "", err
	}
	return aesPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (p *LocalProvider) Decrypt(_ context.Context, ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, aesPrefix) {
		return nil, fmt.Errorf("%w: expected %s", ErrSchemeMismatch, aesPrefix)
	}
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, aesPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return open(p.key, sealed)
}
