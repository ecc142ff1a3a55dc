package tautulli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T, linked bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		switch cmd := r.URL.Query().Get("cmd"); cmd {
		case "status":
			fmt.Fprint(w, `{"response":{"result":"success","message":null,"data":{}}}`)
		case "get_server_info":
			identifier := ""
			name := ""
			if linked {
				identifier = "abc123"
				name = "plex"
			}
			fmt.Fprintf(w, `{"response":{"result":"success","message":null,"data":{"pms_name":%q,"pms_identifier":%q}}}`, name, identifier)
		default:
			fmt.Fprintf(w, `{"response":{"result":"error","message":"Invalid apikey or cmd: %s","data":{}}}`, cmd)
		}
	}))
}

func TestHealth(t *testing.T) {
	server := newFake(t, false)
	defer server.Close()

	client := NewClient(server.URL, "test-key", &http.Client{}, zerolog.Nop())
	require.NoError(t, client.Health(context.Background()))
}

func TestInitialized(t *testing.T) {
	unlinked := newFake(t, false)
	defer unlinked.Close()

	client := NewClient(unlinked.URL, "test-key", &http.Client{}, zerolog.Nop())
	done, err := client.Initialized(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	linked := newFake(t, true)
	defer linked.Close()

	client = NewClient(linked.URL, "test-key", &http.Client{}, zerolog.Nop())
	done, err = client.Initialized(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestConfigureRequiresPlexLink(t *testing.T) {
	server := newFake(t, false)
	defer server.Close()

	client := NewClient(server.URL, "test-key", &http.Client{}, zerolog.Nop())
	err := client.Configure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not linked")

	linked := newFake(t, true)
	defer linked.Close()

	client = NewClient(linked.URL, "test-key", &http.Client{}, zerolog.Nop())
	require.NoError(t, client.Configure(context.Background()))
}

func TestErrorEnvelope(t *testing.T) {
	server := newFake(t, false)
	defer server.Close()

	client := NewClient(server.URL, "test-key", &http.Client{}, zerolog.Nop())
	err := client.call(context.Background(), "bogus_command", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus_command")
}
