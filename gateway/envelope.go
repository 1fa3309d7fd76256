// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/huddle/lib/codec"
	"github.com/bureau-foundation/huddle/lib/wire"
)

const (
	// MaxEnvelopeSize bounds a single envelope in either encoding.
	MaxEnvelopeSize = 1 << 20

	// MaxTypeLength bounds the event type name.
	MaxTypeLength = 64
)

// Envelope is one server-pushed message: an event type name and its
// payload as JSON object text. Envelopes are untrusted until decoded.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`

	// Sequence is the server's monotonically increasing message
	// number, or zero when the server did not send one.
	Sequence int64 `json:"seq,omitempty"`
}

var eventTypeName wire.Decoder[string] = func(v wire.Value) (string, error) {
	s, err := wire.String(v)
	if err != nil {
		return "", err
	}
	if s == "" || len(s) > MaxTypeLength {
		return "", fmt.Errorf("type name must be 1 to %d bytes", MaxTypeLength)
	}
	return s, nil
}

// ParseEnvelope reads a JSON envelope. It checks the envelope shape
// only; the payload is validated by Decode.
func ParseEnvelope(data []byte) (Envelope, error) {
	if len(data) > MaxEnvelopeSize {
		return Envelope{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidEnvelope, len(data), MaxEnvelopeSize)
	}
	obj, err := wire.ParseObject(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	envelope := Envelope{
		Type:    wire.Required(obj, "type", eventTypeName),
		Payload: wire.Required(obj, "payload", wire.RawObject),
	}
	envelope.Sequence, _ = wire.Optional(obj, "seq", wire.Uint)
	if err := obj.Err(); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return envelope, nil
}

// binaryEnvelope is the CBOR form of Envelope.
type binaryEnvelope struct {
	Type     string           `cbor:"type"`
	Payload  codec.RawMessage `cbor:"payload"`
	Sequence int64            `cbor:"seq,omitempty"`
}

// DecodeBinaryEnvelope reads one CBOR envelope and re-encodes its
// payload as JSON so that it can be decoded like any other envelope.
func DecodeBinaryEnvelope(item []byte) (Envelope, error) {
	if len(item) > MaxEnvelopeSize {
		return Envelope{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidEnvelope, len(item), MaxEnvelopeSize)
	}
	var binary binaryEnvelope
	if err := codec.Unmarshal(item, &binary); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if binary.Type == "" || len(binary.Type) > MaxTypeLength {
		return Envelope{}, fmt.Errorf("%w: type name must be 1 to %d bytes", ErrInvalidEnvelope, MaxTypeLength)
	}
	if len(binary.Payload) == 0 {
		return Envelope{}, fmt.Errorf("%w: missing payload", ErrInvalidEnvelope)
	}
	if binary.Sequence < 0 {
		return Envelope{}, fmt.Errorf("%w: negative sequence", ErrInvalidEnvelope)
	}
	payload, err := codec.ToJSON(binary.Payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return Envelope{Type: binary.Type, Payload: payload, Sequence: binary.Sequence}, nil
}

// EncodeBinaryEnvelope encodes envelope as CBOR. The payload must be
// JSON object text.
func EncodeBinaryEnvelope(envelope Envelope) ([]byte, error) {
	var payload map[string]any
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return nil, fmt.Errorf("gateway: payload is not a JSON object: %w", err)
	}
	encodedPayload, err := codec.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(binaryEnvelope{Type: envelope.Type, Payload: encodedPayload, Sequence: envelope.Sequence})
}
