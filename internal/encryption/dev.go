package encryption

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

const devPrefix = "dev:"

// InsecureDevProvider only base64-encodes. It exists so local development
// works without keys; New refuses it in production.
type InsecureDevProvider struct{}

func (InsecureDevProvider) Name() string { return ProviderDev }

func (InsecureDevProvider) Encrypt(_ context.Context, plaintext []byte) (string, error) {
	return devPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (InsecureDevProvider) Decrypt(_ context.Context, ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, devPrefix) {
		return nil, fmt.Errorf("%w: expected %s", ErrSchemeMismatch, devPrefix)
	}
	out, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, devPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return out, nil
}
