package kuma

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// engine.io packet types, the first byte of every text frame.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// socket.io packet types, the second byte when the engine.io type is
// message.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

// frame is one parsed socket.io-over-engine.io text frame. Namespaces are
// not represented: Uptime Kuma only ever uses the default one.
type frame struct {
	eio     byte
	sio     byte
	ackID   int64
	payload []byte
}

// parseFrame splits a wire frame into its parts. The ack id, when present,
// is the digit run between the packet type and the JSON payload.
func parseFrame(data []byte) (frame, error) {
	if len(data) == 0 {
		return frame{}, fmt.Errorf("empty frame")
	}

	f := frame{eio: data[0], ackID: -1}
	rest := data[1:]
	if f.eio != eioMessage {
		f.payload = rest
		return f, nil
	}

	if len(rest) == 0 {
		return frame{}, fmt.Errorf("message frame without a socket.io type")
	}
	f.sio = rest[0]
	rest = rest[1:]

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		id, err := strconv.ParseInt(string(rest[:i]), 10, 64)
		if err != nil {
			return frame{}, fmt.Errorf("bad ack id: %w", err)
		}
		f.ackID = id
	}
	f.payload = rest[i:]

	return f, nil
}

// encodeEvent builds an EVENT frame: 42<ackID>["event",args...]. A negative
// ackID omits the id, for fire-and-forget emits.
func encodeEvent(ackID int64, event string, args ...any) ([]byte, error) {
	arr := make([]any, 0, len(args)+1)
	arr = append(arr, event)
	arr = append(arr, args...)

	payload, err := json.Marshal(arr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", event, err)
	}

	var buf bytes.Buffer
	buf.WriteByte(eioMessage)
	buf.WriteByte(sioEvent)
	if ackID >= 0 {
		buf.WriteString(strconv.FormatInt(ackID, 10))
	}
	buf.Write(payload)

	return buf.Bytes(), nil
}

// eventName pulls the event name and first argument out of an EVENT
// payload.
func eventName(payload []byte) (string, json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(payload, &arr); err != nil {
		return "", nil, fmt.Errorf("bad event payload: %w", err)
	}
	if len(arr) == 0 {
		return "", nil, fmt.Errorf("empty event array")
	}

	var name string
	if err := json.Unmarshal(arr[0], &name); err != nil {
		return "", nil, fmt.Errorf("bad event name: %w", err)
	}

	var first json.RawMessage
	if len(arr) > 1 {
		first = arr[1]
	}
	return name, first, nil
}

// firstAckArg pulls the first argument out of an ACK payload.
func firstAckArg(payload []byte) (json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(payload, &arr); err != nil {
		return nil, fmt.Errorf("bad ack payload: %w", err)
	}
	if len(arr) == 0 {
		return nil, nil
	}
	return arr[0], nil
}
