package auth

import (
	"strings"
	"testing"
)

const testSecretID = "0123456789abcdef0123456789abcdef"

func TestParseAPIKey(t *testing.T) {
	random := strings.Repeat("ab", 32)
	valid := "bk-v1-" + testSecretID + "-" + random

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", valid, false},
		{"wrong product prefix", "tk-v1-" + testSecretID + "-" + random, true},
		{"wrong version", "bk-v2-" + testSecretID + "-" + random, true},
		{"short secret id", "bk-v1-0123-" + random, true},
		{"short random", "bk-v1-" + testSecretID + "-abcd", true},
		{"uppercase hex", "bk-v1-" + strings.ToUpper(testSecretID) + "-" + random, true},
		{"extra segment", valid + "-00", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err != ErrInvalidKeyFormat {
					t.Errorf("ParseAPIKey() error = %v, want ErrInvalidKeyFormat", err)
				}
				return
			}
			if secretID != testSecretID || randomData != random {
				t.Errorf("ParseAPIKey() = %s, %s", secretID, randomData)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	secret := []byte(strings.Repeat("s", 32))

	key, hash, err := GenerateAPIKey(testSecretID, secret)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if len(key) != 102 {
		t.Errorf("len(key) = %d, want 102", len(key))
	}
	if !strings.HasPrefix(key, KeyPrefix+testSecretID+"-") {
		t.Errorf("key = %s, want prefix bk-v1-<secret_id>-", key)
	}
	if !VerifyHMAC(hash, ComputeHMAC(secret, key)) {
		t.Errorf("hash does not verify")
	}

	other, _, err := GenerateAPIKey(testSecretID, secret)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if other == key {
		t.Errorf("two generated keys are equal")
	}

	if _, _, err := GenerateAPIKey("not-hex", secret); err == nil {
		t.Errorf("GenerateAPIKey(bad secret id) error = nil")
	}
}

func TestSigningSecret(t *testing.T) {
	if _, _, err := SigningSecret(nil); err != ErrNoSecrets {
		t.Errorf("SigningSecret(nil) error = %v, want ErrNoSecrets", err)
	}

	secrets := map[string][]byte{
		"01900000000070008000000000000001": []byte("old"),
		"01930000000070008000000000000001": []byte("new"),
	}
	id, secret, err := SigningSecret(secrets)
	if err != nil {
		t.Fatalf("SigningSecret() error = %v", err)
	}
	if id != "01930000000070008000000000000001" || string(secret) != "new" {
		t.Errorf("SigningSecret() = %s, %s; want newest", id, secret)
	}
}

func TestVerifyHMAC(t *testing.T) {
	a := ComputeHMAC([]byte("secret-one"), "key")
	b := ComputeHMAC([]byte("secret-two"), "key")
	if VerifyHMAC(a, b) {
		t.Errorf("different secrets verified")
	}
	if !VerifyHMAC(a, ComputeHMAC([]byte("secret-one"), "key")) {
		t.Errorf("same secret failed to verify")
	}
}
