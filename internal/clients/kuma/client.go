// Package kuma configures an Uptime Kuma instance over its Socket.IO API:
// first-run admin setup, login, and one HTTP monitor per enabled app.
//
// Kuma has no REST surface for any of this. The exchange is engine.io v4
// over a websocket: the server opens with "0{json}", the client joins the
// default namespace with "40", calls are "42<id>[event,args]" emits
// answered by "43<id>[result]" acks, and server pings ("2") are answered
// with pongs ("3") inline.
package kuma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Monitor is one HTTP check to create.
type Monitor struct {
	Name string
	URL  string
}

// Settings carries everything Configure needs.
type Settings struct {
	Username string
	Password string
	Monitors []Monitor
}

// Client drives one Uptime Kuma instance. Each operation dials a fresh
// connection; the protocol is cheap to handshake and this keeps the client
// free of connection state.
type Client struct {
	baseURL string
	logger  zerolog.Logger
}

type ackResponse struct {
	OK        bool   `json:"ok"`
	Msg       string `json:"msg"`
	Token     string `json:"token"`
	MonitorID int64  `json:"monitorID"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type monitorPayload struct {
	Type                string          `json:"type"`
	Name                string          `json:"name"`
	URL                 string          `json:"url"`
	Method              string          `json:"method"`
	Interval            int             `json:"interval"`
	RetryInterval       int             `json:"retryInterval"`
	ResendInterval      int             `json:"resendInterval"`
	MaxRetries          int             `json:"maxretries"`
	AcceptedStatusCodes []string        `json:"accepted_statuscodes"`
	NotificationIDList  map[string]bool `json:"notificationIDList"`
}

type monitorListEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewClient creates an Uptime Kuma client without dialing.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		logger:  logger,
	}
}

// Health dials and asks whether setup is pending, proving the full
// handshake works.
func (c *Client) Health(ctx context.Context) error {
	s, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var needSetup bool
	if err := s.call(ctx, "needSetup", &needSetup); err != nil {
		return fmt.Errorf("failed to query setup state: %w", err)
	}

	c.logger.Debug().Bool("need_setup", needSetup).Msg("Uptime Kuma is healthy")
	return nil
}

// Initialized reports whether the first-run admin exists.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	s, err := c.dial(ctx)
	if err != nil {
		return false, err
	}
	defer s.close()

	var needSetup bool
	if err := s.call(ctx, "needSetup", &needSetup); err != nil {
		return false, fmt.Errorf("failed to query setup state: %w", err)
	}
	return !needSetup, nil
}

// Configure creates the admin if setup is pending, logs in, and adds an
// HTTP monitor per app that does not already have one of the same name.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	s, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var needSetup bool
	if err := s.call(ctx, "needSetup", &needSetup); err != nil {
		return fmt.Errorf("failed to query setup state: %w", err)
	}

	if needSetup {
		var ack ackResponse
		if err := s.call(ctx, "setup", &ack, settings.Username, settings.Password); err != nil {
			return fmt.Errorf("failed to run setup: %w", err)
		}
		if !ack.OK {
			return fmt.Errorf("setup rejected: %s", ack.Msg)
		}
		c.logger.Info().Str("username", settings.Username).Msg("Created Uptime Kuma admin")
	}

	var login ackResponse
	req := loginRequest{Username: settings.Username, Password: settings.Password}
	if err := s.call(ctx, "login", &login, req); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	if !login.OK {
		return fmt.Errorf("login rejected: %s", login.Msg)
	}

	// The server pushes the monitor list right after login.
	existing := make(map[string]bool)
	if raw, ok := s.waitEvent(ctx, "monitorList", 3*time.Second); ok {
		var list map[string]monitorListEntry
		if err := json.Unmarshal(raw, &list); err == nil {
			for _, monitor := range list {
				existing[monitor.Name] = true
			}
		}
	}

	for _, monitor := range settings.Monitors {
		if existing[monitor.Name] {
			c.logger.Debug().Str("monitor", monitor.Name).Msg("Monitor already present")
			continue
		}

		payload := monitorPayload{
			Type:                "http",
			Name:                monitor.Name,
			URL:                 monitor.URL,
			Method:              http.MethodGet,
			Interval:            60,
			RetryInterval:       60,
			MaxRetries:          1,
			AcceptedStatusCodes: []string{"200-299"},
			NotificationIDList:  map[string]bool{},
		}
		var ack ackResponse
		if err := s.call(ctx, "add", &ack, payload); err != nil {
			return fmt.Errorf("failed to add monitor %s: %w", monitor.Name, err)
		}
		if !ack.OK {
			return fmt.Errorf("monitor %s rejected: %s", monitor.Name, ack.Msg)
		}

		c.logger.Info().Str("monitor", monitor.Name).Int64("id", ack.MonitorID).Msg("Added monitor")
	}

	return nil
}

// socket is one live connection after the engine.io and socket.io
// handshakes. Calls are strictly sequential; server events seen while
// waiting for an ack are stashed for waitEvent.
type socket struct {
	conn    *websocket.Conn
	nextAck int64
	events  map[string]json.RawMessage
}

func (c *Client) dial(ctx context.Context) (*socket, error) {
	wsURL, err := websocketURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial uptime kuma: %w", err)
	}
	// The monitor list for a large stack exceeds the default read limit.
	conn.SetReadLimit(1 << 20)

	s := &socket{conn: conn, events: make(map[string]json.RawMessage)}

	f, err := s.read(ctx)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to read engine.io open: %w", err)
	}
	if f.eio != eioOpen {
		s.close()
		return nil, fmt.Errorf("expected engine.io open, got type %c", f.eio)
	}

	if err := s.conn.Write(ctx, websocket.MessageText, []byte{eioMessage, sioConnect}); err != nil {
		s.close()
		return nil, fmt.Errorf("failed to join namespace: %w", err)
	}
	for {
		f, err := s.read(ctx)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to read namespace ack: %w", err)
		}
		if f.eio != eioMessage {
			continue
		}
		if f.sio == sioConnectError {
			s.close()
			return nil, fmt.Errorf("namespace rejected: %s", f.payload)
		}
		if f.sio == sioConnect {
			break
		}
		s.stashEvent(f)
	}

	return s, nil
}

// call emits an event with an ack id and blocks until the matching ack,
// answering pings and stashing unrelated events along the way.
func (s *socket) call(ctx context.Context, event string, out any, args ...any) error {
	id := s.nextAck
	s.nextAck++

	data, err := encodeEvent(id, event, args...)
	if err != nil {
		return err
	}
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}

	for {
		f, err := s.read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read ack for %s: %w", event, err)
		}
		if f.eio != eioMessage {
			continue
		}

		switch f.sio {
		case sioEvent:
			s.stashEvent(f)
		case sioAck:
			if f.ackID != id {
				continue
			}
			arg, err := firstAckArg(f.payload)
			if err != nil {
				return fmt.Errorf("bad ack for %s: %w", event, err)
			}
			if out != nil && arg != nil {
				if err := json.Unmarshal(arg, out); err != nil {
					return fmt.Errorf("failed to decode ack for %s: %w", event, err)
				}
			}
			return nil
		case sioDisconnect:
			return fmt.Errorf("server disconnected while waiting for %s", event)
		}
	}
}

// waitEvent returns the named server event, reading until it arrives or
// the timeout passes.
func (s *socket) waitEvent(ctx context.Context, name string, timeout time.Duration) (json.RawMessage, bool) {
	if raw, ok := s.events[name]; ok {
		return raw, true
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		f, err := s.read(ctx)
		if err != nil {
			return nil, false
		}
		if f.eio != eioMessage || f.sio != sioEvent {
			continue
		}
		s.stashEvent(f)
		if raw, ok := s.events[name]; ok {
			return raw, true
		}
	}
}

// read returns the next non-ping frame, answering pings inline.
func (s *socket) read(ctx context.Context) (frame, error) {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return frame{}, err
		}
		if typ != websocket.MessageText {
			continue
		}

		f, err := parseFrame(data)
		if err != nil {
			return frame{}, err
		}
		if f.eio == eioPing {
			if err := s.conn.Write(ctx, websocket.MessageText, []byte{eioPong}); err != nil {
				return frame{}, err
			}
			continue
		}
		return f, nil
	}
}

func (s *socket) stashEvent(f frame) {
	name, first, err := eventName(f.payload)
	if err != nil {
		return
	}
	s.events[name] = first
}

func (s *socket) close() {
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}

// websocketURL turns the instance base URL into the engine.io endpoint.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad uptime kuma URL %q: %w", base, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("bad uptime kuma URL scheme %q", u.Scheme)
	}

	u.Path = "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"
	return u.String(), nil
}
