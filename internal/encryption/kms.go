package encryption

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	kmsPrefix          = "kms:v1:"
	defaultKMSEndpoint = "https://cloudkms.googleapis.com/v1"
)

// KMSProvider does envelope encryption: each payload gets a fresh data key,
// the payload is sealed with AES-GCM and the data key is wrapped by Cloud KMS.
type KMSProvider struct {
	keyID    string
	token    string
	endpoint string
	client   *http.Client
}

func NewKMSProvider(keyID, token, endpoint string, client *http.Client) (*KMSProvider, error) {
	if keyID == "" {
		return nil, errors.New("CLOUD_KMS_KEY_ID is required for kms encryption")
	}
	if endpoint == "" {
		endpoint = defaultKMSEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &KMSProvider{
		keyID:    keyID,
		token:    token,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}, nil
}

func (p *KMSProvider) Name() string { return ProviderKMS }

func (p *KMSProvider) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	dataKey := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, dataKey); err != nil {
		return "", fmt.Errorf("generating data key: %w", err)
	}
	sealed, err := seal(dataKey, plaintext)
	if err != nil {
		return "", err
	}

	var resp struct {
		Ciphertext string `json:"ciphertext"`
	}
	req := map[string]string{"plaintext": base64.StdEncoding.EncodeToString(dataKey)}
	if err := p.call(ctx, "encrypt", req, &resp); err != nil {
		return "", err
	}
	if resp.Ciphertext == "" {
		return "", errors.New("kms encrypt returned no ciphertext")
	}
	return kmsPrefix + resp.Ciphertext + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

func (p *KMSProvider) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, kmsPrefix) {
		return nil, fmt.Errorf("%w: expected %s", ErrSchemeMismatch, kmsPrefix)
	}
	wrapped, body, ok := strings.Cut(strings.TrimPrefix(ciphertext, kmsPrefix), ":")
	if !ok || wrapped == "" || body == "" {
		return nil, ErrMalformedCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	var resp struct {
		Plaintext string `json:"plaintext"`
	}
	if err := p.call(ctx, "decrypt", map[string]string{"ciphertext": wrapped}, &resp); err != nil {
		return nil, err
	}
	dataKey, err := base64.StdEncoding.DecodeString(resp.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("decoding data key: %w", err)
	}
	return open(dataKey, sealed)
}

// call POSTs to {endpoint}/{keyID}:{method}.
func (p *KMSProvider) call(ctx context.Context, method string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s:%s", p.endpoint, p.keyID, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating kms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("kms %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("kms %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding kms %s response: %w", method, err)
	}
	return nil
}
