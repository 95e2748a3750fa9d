package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix starts every BranchKeeper API key.
const KeyPrefix = "bk-v1-"

// ParseAPIKey extracts secret_id and random_data from API key format.
// Format: bk-v1-<secret_id>-<random_data> (102 chars total).
// Returns ErrInvalidKeyFormat if format doesn't match.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0] != "bk" || parts[1] != "v1" {
		return "", "", ErrInvalidKeyFormat
	}

	secretID = parts[2]
	randomData = parts[3]

	// secret_id is 32 hex chars (UUID without hyphens), random_data 64 (256 bits)
	if len(secretID) != 32 || len(randomData) != 64 {
		return "", "", ErrInvalidKeyFormat
	}
	for _, c := range secretID + randomData {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", "", ErrInvalidKeyFormat
		}
	}

	return secretID, randomData, nil
}

// ComputeHMAC computes HMAC-SHA256 signature of API key using secret.
func ComputeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}

// VerifyHMAC verifies HMAC signature using constant-time comparison.
func VerifyHMAC(expectedHash, computedHash []byte) bool {
	return hmac.Equal(expectedHash, computedHash)
}

// FormatAPIKey constructs API key from components.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s%s-%s", KeyPrefix, secretID, randomData)
}

// GenerateAPIKey mints a key signed by secret. The returned hash is what the
// api_keys table stores; the key itself is shown once and never persisted.
func GenerateAPIKey(secretID string, secret []byte) (key string, hash []byte, err error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return "", nil, fmt.Errorf("generate key material: %w", err)
	}
	key = FormatAPIKey(secretID, hex.EncodeToString(random))
	if _, _, err := ParseAPIKey(key); err != nil {
		return "", nil, fmt.Errorf("secret id %q: %w", secretID, err)
	}
	return key, ComputeHMAC(secret, key), nil
}

// SigningSecret picks the secret new keys are issued under: the highest
// secret id, which for UUIDv7 ids is the most recently created.
func SigningSecret(secrets map[string][]byte) (string, []byte, error) {
	if len(secrets) == 0 {
		return "", nil, ErrNoSecrets
	}
	ids := make([]string, 0, len(secrets))
	for id := range secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	id := ids[len(ids)-1]
	return id, secrets[id], nil
}
