package kuma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantEio     byte
		wantSio     byte
		wantAckID   int64
		wantPayload string
		wantErr     bool
	}{
		{
			name:        "engine.io open",
			in:          `0{"sid":"abc","pingInterval":25000}`,
			wantEio:     eioOpen,
			wantAckID:   -1,
			wantPayload: `{"sid":"abc","pingInterval":25000}`,
		},
		{
			name:      "ping",
			in:        "2",
			wantEio:   eioPing,
			wantAckID: -1,
		},
		{
			name:        "namespace connect",
			in:          `40{"sid":"xyz"}`,
			wantEio:     eioMessage,
			wantSio:     sioConnect,
			wantAckID:   -1,
			wantPayload: `{"sid":"xyz"}`,
		},
		{
			name:        "event without ack id",
			in:          `42["monitorList",{}]`,
			wantEio:     eioMessage,
			wantSio:     sioEvent,
			wantAckID:   -1,
			wantPayload: `["monitorList",{}]`,
		},
		{
			name:        "event with ack id",
			in:          `421["needSetup"]`,
			wantEio:     eioMessage,
			wantSio:     sioEvent,
			wantAckID:   1,
			wantPayload: `["needSetup"]`,
		},
		{
			name:        "ack with multi digit id",
			in:          `4312[{"ok":true}]`,
			wantEio:     eioMessage,
			wantSio:     sioAck,
			wantAckID:   12,
			wantPayload: `[{"ok":true}]`,
		},
		{
			name:    "empty frame",
			in:      "",
			wantErr: true,
		},
		{
			name:    "message without socket.io type",
			in:      "4",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFrame([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEio, f.eio)
			assert.Equal(t, tt.wantSio, f.sio)
			assert.Equal(t, tt.wantAckID, f.ackID)
			assert.Equal(t, tt.wantPayload, string(f.payload))
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	tests := []struct {
		name  string
		ackID int64
		event string
		args  []any
		want  string
	}{
		{
			name:  "no args",
			ackID: 0,
			event: "needSetup",
			want:  `420["needSetup"]`,
		},
		{
			name:  "string args",
			ackID: 1,
			event: "setup",
			args:  []any{"admin", "hunter2"},
			want:  `421["setup","admin","hunter2"]`,
		},
		{
			name:  "negative id omits the ack",
			ackID: -1,
			event: "logout",
			want:  `42["logout"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeEvent(tt.ackID, tt.event, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	data, err := encodeEvent(7, "login", map[string]string{"username": "admin"})
	require.NoError(t, err)

	f, err := parseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, byte(eioMessage), f.eio)
	assert.Equal(t, byte(sioEvent), f.sio)
	assert.Equal(t, int64(7), f.ackID)

	name, first, err := eventName(f.payload)
	require.NoError(t, err)
	assert.Equal(t, "login", name)
	assert.JSONEq(t, `{"username":"admin"}`, string(first))
}

func TestFirstAckArg(t *testing.T) {
	arg, err := firstAckArg([]byte(`[{"ok":true,"token":"t"}]`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"token":"t"}`, string(arg))

	arg, err = firstAckArg([]byte(`[]`))
	require.NoError(t, err)
	assert.Nil(t, arg)

	_, err = firstAckArg([]byte(`{`))
	require.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:3001", want: "ws://localhost:3001/socket.io/?EIO=4&transport=websocket"},
		{in: "https://status.example.com", want: "wss://status.example.com/socket.io/?EIO=4&transport=websocket"},
		{in: "ws://localhost:3001", want: "ws://localhost:3001/socket.io/?EIO=4&transport=websocket"},
		{in: "ftp://nope", wantErr: true},
	}

	for _, tt := range tests {
		got, err := websocketURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
