package strip

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value as the firmware receives it.
type Color struct {
	R, G, B uint8
}

// RGB creates a Color, keeping only the low 8 bits of each channel.
func RGB(r, g, b int) Color {
	return Color{R: uint8(r & 0xff), G: uint8(g & 0xff), B: uint8(b & 0xff)}
}

// Uint32 packs the color as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// AppendTo appends the wire form (R, G, B) to b.
func (c Color) AppendTo(b []byte) []byte {
	return append(b, c.R, c.G, c.B)
}

// String returns #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var namedColors = map[string]Color{
	"red":     {R: 255},
	"green":   {G: 255},
	"blue":    {B: 255},
	"yellow":  {R: 255, G: 255},
	"magenta": {R: 255, B: 255},
	"cyan":    {G: 255, B: 255},
	"orange":  {R: 255, G: 128},
	"purple":  {R: 128, B: 255},
	"pink":    {R: 255, G: 192, B: 203},
	"white":   {R: 255, G: 255, B: 255},
	"black":   {},
	"off":     {},
}

// ParseColor accepts "#rrggbb", "rrggbb", "r,g,b" (decimal) or a color name.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid color %q: %v", s, err)
			}
			v[i] = uint8(n)
		}
		return Color{R: v[0], G: v[1], B: v[2]}, nil
	}
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %v", s, err)
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}
