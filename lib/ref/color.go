// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// Color is an opaque RGB color in "#rrggbb" form. Input is accepted in
// either case and stored lowercase.
type Color struct {
	hex string
}

// ParseColor validates a "#rrggbb" color.
func ParseColor(raw string) (Color, error) {
	if len(raw) != 7 {
		return Color{}, fmt.Errorf("color %q: %w: must be 7 characters", raw, ErrInvalidLength)
	}
	if raw[0] != '#' {
		return Color{}, fmt.Errorf("color %q: %w: must start with '#'", raw, ErrInvalidFormat)
	}
	for i := 1; i < len(raw); i++ {
		if !isHexDigit(raw[i]) {
			return Color{}, fmt.Errorf("color %q: %w: %q is not a hex digit", raw, ErrInvalidFormat, raw[i])
		}
	}
	return Color{hex: strings.ToLower(raw)}, nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(raw string) Color {
	return must(ParseColor(raw))
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// String returns the lowercase "#rrggbb" form.
func (c Color) String() string { return c.hex }

// IsZero reports whether the color is unset.
func (c Color) IsZero() bool { return c.hex == "" }

// RGB returns the color's components.
func (c Color) RGB() (r, g, b uint8) {
	if c.hex == "" {
		return 0, 0, 0
	}
	return hexByte(c.hex[1:3]), hexByte(c.hex[3:5]), hexByte(c.hex[5:7])
}

func hexByte(pair string) uint8 {
	return hexNibble(pair[0])<<4 | hexNibble(pair[1])
}

func hexNibble(c byte) uint8 {
	if c >= 'a' {
		return c - 'a' + 10
	}
	return c - '0'
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.hex), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(data []byte) error {
	return unmarshalInto(c, data, ParseColor)
}
