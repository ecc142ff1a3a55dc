package jellyfin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJellyfin covers the startup wizard, auth, API keys, and libraries.
type fakeJellyfin struct {
	mu              sync.Mutex
	wizardCompleted bool
	username        string
	password        string
	keys            []apiKey
	libraries       []virtualFolder
}

func (f *fakeJellyfin) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if !strings.HasPrefix(r.Header.Get("Authorization"), "MediaBrowser ") {
			t.Errorf("missing MediaBrowser authorization header on %s", r.URL.Path)
		}

		switch r.URL.Path {
		case "/System/Info/Public":
			json.NewEncoder(w).Encode(PublicSystemInfo{
				ServerName:             "test",
				Version:                "10.9.0",
				StartupWizardCompleted: f.wizardCompleted,
			})
		case "/Startup/Configuration":
			w.WriteHeader(http.StatusNoContent)
		case "/Startup/User":
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(startupUser{Name: "abc"})
				return
			}
			var user startupUser
			require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
			f.username = user.Name
			f.password = user.Password
			w.WriteHeader(http.StatusNoContent)
		case "/Startup/RemoteAccess":
			w.WriteHeader(http.StatusNoContent)
		case "/Startup/Complete":
			f.wizardCompleted = true
			w.WriteHeader(http.StatusNoContent)
		case "/Users/AuthenticateByName":
			var auth authRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&auth))
			if auth.Username != f.username || auth.Pw != f.password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			resp := authResponse{AccessToken: "session-token"}
			resp.User.ID = "u1"
			resp.User.Name = auth.Username
			json.NewEncoder(w).Encode(resp)
		case "/Auth/Keys":
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(apiKeyList{Items: f.keys})
				return
			}
			f.keys = append(f.keys, apiKey{
				AccessToken: "generated-key",
				AppName:     r.URL.Query().Get("app"),
			})
			w.WriteHeader(http.StatusNoContent)
		case "/Library/VirtualFolders":
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(f.libraries)
				return
			}
			f.libraries = append(f.libraries, virtualFolder{
				Name:           r.URL.Query().Get("name"),
				CollectionType: r.URL.Query().Get("collectionType"),
			})
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestConfigureFreshInstance(t *testing.T) {
	fake := &fakeJellyfin{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	settings := Settings{
		Username: "admin",
		Password: "hunter2hunter2",
		Libraries: []Library{
			{Name: "Movies", CollectionType: "movies", Path: "/data/movies"},
			{Name: "Shows", CollectionType: "tvshows", Path: "/data/tv"},
		},
	}
	key, err := client.Configure(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, "generated-key", key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.wizardCompleted)
	assert.Equal(t, "admin", fake.username)
	assert.Len(t, fake.libraries, 2)
	assert.Equal(t, "Movies", fake.libraries[0].Name)
}

func TestConfigureCompletedInstance(t *testing.T) {
	fake := &fakeJellyfin{
		wizardCompleted: true,
		username:        "admin",
		password:        "hunter2hunter2",
		keys:            []apiKey{{AccessToken: "old-key", AppName: "easiarr"}},
		libraries:       []virtualFolder{{Name: "Movies"}},
	}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	settings := Settings{
		Username:  "admin",
		Password:  "hunter2hunter2",
		Libraries: []Library{{Name: "Movies", CollectionType: "movies", Path: "/data/movies"}},
	}
	key, err := client.Configure(context.Background(), settings)
	require.NoError(t, err)

	// Existing key and library are reused, not duplicated.
	assert.Equal(t, "old-key", key)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.keys, 1)
	assert.Len(t, fake.libraries, 1)
}

func TestInitialized(t *testing.T) {
	fake := &fakeJellyfin{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := NewClient(server.URL, &http.Client{}, zerolog.Nop())

	done, err := client.Initialized(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	fake.mu.Lock()
	fake.wizardCompleted = true
	fake.mu.Unlock()

	done, err = client.Initialized(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHealthDown(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", &http.Client{}, zerolog.Nop())
	assert.Error(t, client.Health(context.Background()))
}
