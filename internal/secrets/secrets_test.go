package secrets

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name     string
		password string
		min      int
		want     string
	}{
		{"already long enough", "supersecret", 6, "supersecret"},
		{"exact length", "abcdef", 6, "abcdef"},
		{"short password padded", "abc", 6, "abc000"},
		{"empty password", "", 4, "0000"},
		{"single char", "x", 8, "x0000000"},
		{"zero minimum", "pw", 0, "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pad(tt.password, tt.min); got != tt.want {
				t.Errorf("Pad(%q, %d) = %q, want %q", tt.password, tt.min, got, tt.want)
			}
		})
	}
}

func TestPadPreservesPrefix(t *testing.T) {
	for _, pw := range []string{"a", "ab", "abc", "abcd"} {
		got := Pad(pw, 10)
		if !strings.HasPrefix(got, pw) {
			t.Errorf("Pad(%q, 10) = %q, lost original prefix", pw, got)
		}
		if len(got) != 10 {
			t.Errorf("Pad(%q, 10) has length %d, want 10", pw, len(got))
		}
	}
}

func TestNewAPIKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		key, err := NewAPIKey()
		if err != nil {
			t.Fatalf("NewAPIKey() error: %v", err)
		}
		if len(key) != APIKeyLength {
			t.Fatalf("key length = %d, want %d", len(key), APIKeyLength)
		}
		if _, err := hex.DecodeString(key); err != nil {
			t.Fatalf("key %q is not hex: %v", key, err)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestNewPassword(t *testing.T) {
	pw, err := NewPassword(20)
	if err != nil {
		t.Fatalf("NewPassword(20) error: %v", err)
	}
	if len(pw) != 20 {
		t.Fatalf("password length = %d, want 20", len(pw))
	}
	for _, r := range pw {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("password contains %q outside alphabet", r)
		}
	}

	if _, err := NewPassword(0); err == nil {
		t.Fatal("NewPassword(0) should fail")
	}
}

func TestQbitPasswordHash(t *testing.T) {
	hash, err := QbitPasswordHash("adminadmin")
	if err != nil {
		t.Fatalf("QbitPasswordHash error: %v", err)
	}
	if !strings.HasPrefix(hash, "@ByteArray(") || !strings.HasSuffix(hash, ")") {
		t.Fatalf("hash %q not wrapped in @ByteArray()", hash)
	}
	if !VerifyQbitPassword("adminadmin", hash) {
		t.Error("VerifyQbitPassword rejected the original password")
	}
	if VerifyQbitPassword("wrongpass", hash) {
		t.Error("VerifyQbitPassword accepted a wrong password")
	}
}

func TestVerifyQbitPasswordMalformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no wrapper", "salt:key"},
		{"missing colon", "@ByteArray(c2FsdA==)"},
		{"bad salt base64", "@ByteArray(!!:c2FsdA==)"},
		{"bad key base64", "@ByteArray(c2FsdA==:!!)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyQbitPassword("pw", tt.stored) {
				t.Errorf("VerifyQbitPassword accepted malformed entry %q", tt.stored)
			}
		})
	}
}
