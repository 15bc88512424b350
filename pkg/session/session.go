// Package session defines the per-file negotiation state and the codec that
// carries it through the chat platform.
//
// Event delivery is stateless between calls: nothing guarantees the same
// process handles both halves of a negotiation. The session therefore rides
// inside every outbound interactive element (button values, modal
// private_metadata) as an opaque token and is reconstructed from the token on
// every inbound interaction. There is no server-side session table.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCorrelation is returned when a token cannot be decoded back into a
// Session: wrong codec version, malformed encoding, or missing fields.
// Callers must treat it as "this negotiation cannot be resumed" and must not
// guess at partial state.
var ErrCorrelation = errors.New("session token cannot be decoded")

// Session identifies which file, conversation and confirmation prompt a later
// interaction belongs to.
type Session struct {
	FileID    string `json:"file_id"`
	ChannelID string `json:"channel_id"`

	// NegotiationID is assigned when the negotiation opens and rides in the
	// token so every handler of the same negotiation logs the same id.
	NegotiationID string `json:"negotiation_id,omitempty"`

	// AnchorMessageID is the timestamp of the confirmation prompt. It is
	// empty when the prompt is first posted (the platform assigns it only
	// after accepting the post) and patched in by re-encoding the session
	// into an update of the already-sent prompt.
	AnchorMessageID string `json:"anchor_message_id"`
}

// codecVersion prefixes every token. Tokens from a different version fail to
// decode rather than being partially interpreted.
const codecVersion = "v1"

// Encode serializes a Session into an opaque token safe to embed in UI
// element values and message-attached metadata.
func Encode(s Session) string {
	data, _ := json.Marshal(s)
	return codecVersion + "." + base64.RawURLEncoding.EncodeToString(data)
}

// Decode is the exact inverse of Encode.
func Decode(token string) (Session, error) {
	version, payload, ok := strings.Cut(token, ".")
	if !ok || version != codecVersion {
		return Session{}, fmt.Errorf("%w: unsupported token version", ErrCorrelation)
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorrelation, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorrelation, err)
	}
	if s.FileID == "" || s.ChannelID == "" {
		return Session{}, fmt.Errorf("%w: missing file or channel id", ErrCorrelation)
	}
	return s, nil
}
