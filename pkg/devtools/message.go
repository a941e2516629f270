package devtools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned when decoding panel messages.
var (
	ErrMalformedMessage = errors.New("malformed devtools message")
	ErrUnknownMessage   = errors.New("unknown devtools message type")
)

// MessageType tags a message sent by the panel.
type MessageType string

// Panel message types.
const (
	// MessageInit announces that a panel attached to a browser tab.
	MessageInit MessageType = "init"
	// MessageRequest asks the bridge to execute a query on the client.
	MessageRequest MessageType = "request"
)

// initSignal is the outbound message announcing the bridge.
var initSignal = []byte(`"init"`)

// Message is a command sent from the panel to the bridge.
type Message struct {
	Type MessageType `json:"type"`

	// TabID identifies the panel's tab (init only).
	TabID int `json:"tabId,omitempty"`

	// Query is the GraphQL document to execute (request only).
	Query string `json:"query,omitempty"`

	// Vars are the variables for Query (request only).
	Vars map[string]any `json:"vars,omitempty"`
}

// DecodeMessage parses a panel message. Messages with an unrecognized type
// return ErrUnknownMessage; undecodable input returns ErrMalformedMessage.
func DecodeMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch msg.Type {
	case MessageInit, MessageRequest:
		return msg, nil
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

// EncodeRequest builds a request message for the bridge.
func EncodeRequest(query string, vars map[string]any) ([]byte, error) {
	return json.Marshal(Message{Type: MessageRequest, Query: query, Vars: vars})
}

// EncodeInit builds an init message for the bridge.
func EncodeInit(tabID int) ([]byte, error) {
	return json.Marshal(Message{Type: MessageInit, TabID: tabID})
}

// DecodeOutbound parses a message sent by the bridge. It reports init for the
// init signal and otherwise returns the relayed event.
func DecodeOutbound(raw []byte) (isInit bool, ev Event, err error) {
	if bytes.Equal(bytes.TrimSpace(raw), initSignal) {
		return true, Event{}, nil
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return false, Event{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if !ev.Type.Valid() {
		return false, Event{}, fmt.Errorf("%w: %q", ErrUnknownMessage, ev.Type)
	}
	return false, ev, nil
}
