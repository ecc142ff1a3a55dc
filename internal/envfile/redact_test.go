package envfile

import (
	"strings"
	"testing"
)

func TestIsSensitive(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"RADARR__API_KEY", true},
		{"SONARR__API_KEY", true},
		{"QBITTORRENT__PASSWORD", true},
		{"JELLYFIN__TOKEN", true},
		{"GLUETUN__WIREGUARD_PRIVATE_KEY", true},
		{"OVERSEERR__APIKEY", true},
		{"SOME__SECRET", true},
		{"QBITTORRENT__PASS", true},
		{"radarr__api_key", true},
		{"TZ", false},
		{"PUID", false},
		{"RADARR__PORT", false},
		{"KEYBOARD", false},
		{"PASSAGE", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitive(tt.key); got != tt.want {
				t.Errorf("IsSensitive(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"one char", "a", "••••••••"},
		{"two chars", "ab", "••••••••"},
		{"normal key", "abcdef123456", "ab••••••••"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactValue(tt.in); got != tt.want {
				t.Errorf("RedactValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactedNeverLeaksSecrets(t *testing.T) {
	s := newTestStore(t, strings.Join([]string{
		"TZ='Europe/Berlin'",
		"RADARR__API_KEY='deadbeefdeadbeefdeadbeefdeadbeef'",
		"QBITTORRENT__PASSWORD='hunter2hunter2'",
		"RADARR__PORT='7878'",
	}, "\n")+"\n")

	lines, err := s.Redacted()
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(lines, "\n")

	if strings.Contains(joined, "deadbeefdeadbeefdeadbeefdeadbeef") {
		t.Error("API key leaked into redacted output")
	}
	if strings.Contains(joined, "hunter2") {
		t.Error("password leaked into redacted output")
	}
	if !strings.Contains(joined, "TZ=Europe/Berlin") {
		t.Error("non-sensitive value should stay readable")
	}
	if !strings.Contains(joined, "RADARR__PORT=7878") {
		t.Error("port should stay readable")
	}
	if !strings.Contains(joined, "RADARR__API_KEY=de••••••••") {
		t.Errorf("expected prefix-preserving mask, got:\n%s", joined)
	}
}
