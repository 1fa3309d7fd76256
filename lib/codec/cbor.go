// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Limits applied when decoding untrusted CBOR.
const (
	MaxNestedLevels  = 32
	MaxArrayElements = 4096
	MaxMapPairs      = 4096
)

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Value types from lib/ref carry unexported fields and serialize
	// through MarshalText.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// any-typed targets must produce map[string]any so that the
		// result can be re-encoded as JSON.
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler:  cbor.TextUnmarshalerTextString,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:  MaxNestedLevels,
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxMapPairs,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// RawMessage is an undecoded CBOR item.
type RawMessage = cbor.RawMessage

// NewEncoder returns a deterministic CBOR encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder reading a sequence of items from r
// with the untrusted-input limits applied.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// ToJSON re-encodes a single CBOR item as JSON. Maps must have text
// keys. Byte strings become base64 JSON strings, matching
// encoding/json's treatment of []byte.
func ToJSON(raw RawMessage) ([]byte, error) {
	var value any
	if err := decMode.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("codec: decoding CBOR item: %w", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("codec: re-encoding CBOR item as JSON: %w", err)
	}
	return data, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. Used by the replay tool when reporting undecodable items.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
