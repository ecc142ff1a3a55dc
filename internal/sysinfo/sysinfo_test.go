package sysinfo

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDetectPlatform(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("platform probes are linux paths")
	}

	tests := []struct {
		name  string
		files []string
		want  Platform
	}{
		{"bare system", nil, PlatformGeneric},
		{"unraid marker", []string{"etc/unraid-version"}, PlatformUnraid},
		{"synology marker", []string{"etc/synoinfo.conf"}, PlatformSynology},
		{"unraid wins over synology", []string{"etc/unraid-version", "etc/synoinfo.conf"}, PlatformUnraid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				path := filepath.Join(root, f)
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if got := detectPlatform(root); got != tt.want {
				t.Errorf("detectPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectTimezone(t *testing.T) {
	t.Setenv("TZ", "")

	t.Run("from etc timezone", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "etc"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, "etc", "timezone"), []byte("Europe/Berlin\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := detectTimezone(root); got != "Europe/Berlin" {
			t.Errorf("detectTimezone() = %q, want Europe/Berlin", got)
		}
	})

	t.Run("from localtime symlink", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "etc"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink("/usr/share/zoneinfo/America/New_York", filepath.Join(root, "etc", "localtime")); err != nil {
			t.Skipf("symlink not supported: %v", err)
		}
		if got := detectTimezone(root); got != "America/New_York" {
			t.Errorf("detectTimezone() = %q, want America/New_York", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		if got := detectTimezone(t.TempDir()); got != "Etc/UTC" {
			t.Errorf("detectTimezone() = %q, want Etc/UTC", got)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TZ", "Asia/Tokyo")
		if got := detectTimezone(t.TempDir()); got != "Asia/Tokyo" {
			t.Errorf("detectTimezone() = %q, want Asia/Tokyo", got)
		}
	})
}

func TestDetectLANNetwork(t *testing.T) {
	got := DetectLANNetwork()
	if _, _, err := net.ParseCIDR(got); err != nil {
		t.Errorf("DetectLANNetwork() = %q is not a valid CIDR: %v", got, err)
	}
}

func TestSuggestedRoot(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"unraid", Info{Platform: PlatformUnraid}, "/mnt/user/appdata/easiarr"},
		{"synology", Info{Platform: PlatformSynology}, "/volume1/docker/easiarr"},
		{"generic with home", Info{Platform: PlatformGeneric, HomeDir: "/home/pat"}, "/home/pat/easiarr"},
		{"generic without home", Info{Platform: PlatformGeneric}, "/opt/easiarr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.SuggestedRoot(); got != tt.want {
				t.Errorf("SuggestedRoot() = %q, want %q", got, tt.want)
			}
		})
	}
}
