package profilarr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfilarr struct {
	mu          sync.Mutex
	databaseURL string
}

func (f *fakeProfilarr) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.URL.Path {
		case "/api/health":
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		case "/api/settings":
			json.NewEncoder(w).Encode(settingsResponse{DatabaseURL: f.databaseURL})
		case "/api/settings/database":
			var req connectDatabaseRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.databaseURL = req.URL
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestConfigureConnectsDatabase(t *testing.T) {
	fake := &fakeProfilarr{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	require.NoError(t, client.Configure(context.Background(), Settings{}))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, DefaultDatabaseURL, fake.databaseURL)
}

func TestConfigureKeepsExistingDatabase(t *testing.T) {
	fake := &fakeProfilarr{databaseURL: "https://example.com/custom"}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	require.NoError(t, client.Configure(context.Background(), Settings{DatabaseURL: "https://example.com/other"}))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "https://example.com/custom", fake.databaseURL)
}

func TestInitialized(t *testing.T) {
	fake := &fakeProfilarr{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	done, err := client.Initialized(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	fake.mu.Lock()
	fake.databaseURL = DefaultDatabaseURL
	fake.mu.Unlock()

	done, err = client.Initialized(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHealth(t *testing.T) {
	fake := &fakeProfilarr{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())
	require.NoError(t, client.Health(context.Background()))
}
