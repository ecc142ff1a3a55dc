package registry

import (
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("catalog failed validation: %v", err)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"radarr", true},
		{"sonarr", true},
		{"uptime-kuma", true},
		{"qbittorrent", true},
		{"", false},
		{"Radarr", false},
		{"nzbget", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, ok := Get(tt.id)
			if ok != tt.want {
				t.Errorf("Get(%q) ok = %v, want %v", tt.id, ok, tt.want)
			}
		})
	}
}

func TestEnvKeys(t *testing.T) {
	kuma, ok := Get("uptime-kuma")
	if !ok {
		t.Fatal("uptime-kuma missing from catalog")
	}
	if got := kuma.EnvPrefix(); got != "UPTIME_KUMA" {
		t.Errorf("EnvPrefix() = %q, want UPTIME_KUMA", got)
	}
	if got := kuma.EnvKey("password"); got != "UPTIME_KUMA__PASSWORD" {
		t.Errorf("EnvKey(password) = %q, want UPTIME_KUMA__PASSWORD", got)
	}
}

func TestDefaultsResolvable(t *testing.T) {
	defaults := Defaults()
	if len(defaults) == 0 {
		t.Fatal("no default apps defined")
	}
	for _, id := range defaults {
		if _, ok := Get(id); !ok {
			t.Errorf("default app %q not in catalog", id)
		}
	}
}

func TestWithDependencies(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "radarr pulls qbittorrent",
			ids:  []string{"radarr"},
			want: []string{"qbittorrent", "radarr"},
		},
		{
			name: "bazarr pulls both arrs and their client",
			ids:  []string{"bazarr"},
			want: []string{"bazarr", "qbittorrent", "radarr", "sonarr"},
		},
		{
			name: "no dependencies",
			ids:  []string{"jellyfin"},
			want: []string{"jellyfin"},
		},
		{
			name: "already complete set unchanged",
			ids:  []string{"qbittorrent", "radarr"},
			want: []string{"qbittorrent", "radarr"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithDependencies(tt.ids)
			if len(got) != len(tt.want) {
				t.Fatalf("WithDependencies(%v) = %v, want %v", tt.ids, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("WithDependencies(%v) = %v, want %v", tt.ids, got, tt.want)
				}
			}
		})
	}
}

func TestByCategoryCoversCatalog(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		total += len(ByCategory(c))
	}
	if total != len(All()) {
		t.Errorf("categories cover %d apps, catalog has %d", total, len(All()))
	}
}

func TestWebPort(t *testing.T) {
	a := App{Port: 8080}
	if got := a.WebPort(); got != 8080 {
		t.Errorf("WebPort() = %d, want 8080", got)
	}
	a.InternalPort = 80
	if got := a.WebPort(); got != 80 {
		t.Errorf("WebPort() = %d, want 80", got)
	}
}
