package strip

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordRoundTrip(t *testing.T) {
	for v := 0; v <= 0xffff; v++ {
		require.Equal(t, uint16(v), Word(PutWord(uint16(v))))
	}
	require.Equal(t, [2]byte{0x01, 0x2c}, PutWord(300))
	require.Equal(t, uint16(300), Word([2]byte{0x01, 0x2c}))
}

func TestCommandBytes(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    Command
		expect []byte
	}{
		{"no args", Command{Op: OpOutput}, []byte{'O'}},
		{"one word", Command{Op: OpSetLength, Words: []uint16{0xabcd}}, []byte{'L', 0xab, 0xcd}},
		{"fill", Command{Op: OpFill, Words: []uint16{0, 10}, Colors: []Color{{R: 255}}},
			[]byte{'F', 0, 0, 0, 10, 255, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.cmd.Bytes())
			var joined []byte
			for _, seg := range tc.cmd.segments() {
				joined = append(joined, seg...)
			}
			require.Equal(t, tc.expect, joined)
		})
	}
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "fill", OpFill.String())
	require.Equal(t, "max-leds", OpMaxLEDs.String())
	require.Equal(t, "opcode(90)", Opcode('Z').String())
}

func TestColor(t *testing.T) {
	require.Equal(t, Color{R: 0x12, G: 0x34, B: 0x56}, RGB(0x12, 0x34, 0x56))
	require.Equal(t, Color{R: 0x00, G: 0xff, B: 0x01}, RGB(256, -1, 257))
	require.Equal(t, uint32(0x123456), RGB(0x12, 0x34, 0x56).Uint32())
	require.Equal(t, "#ff8000", Color{R: 255, G: 128}.String())
	require.Equal(t, Color{R: 1, G: 2, B: 3}, Color{R: 1, G: 2, B: 3})
}

func TestParseColor(t *testing.T) {
	valid := map[string]Color{
		"#ff0000":     {R: 255},
		"00FF00":      {G: 255},
		"1, 2, 3":     {R: 1, G: 2, B: 3},
		" Cyan ":      {G: 255, B: 255},
		"off":         {},
		"#0a0b0c":     {R: 10, G: 11, B: 12},
		"255,255,255": {R: 255, G: 255, B: 255},
	}
	for in, expect := range valid {
		c, err := ParseColor(in)
		require.NoError(t, err, in)
		require.Equal(t, expect, c, in)
	}
	for _, in := range []string{"", "#fff", "256,0,0", "zz0000", "1,2", "chartreuse"} {
		_, err := ParseColor(in)
		require.Error(t, err, in)
	}
}

func TestColorJSON(t *testing.T) {
	out, err := json.Marshal([]Color{{R: 255}, {B: 1}})
	require.NoError(t, err)
	require.Equal(t, `["#ff0000","#000001"]`, string(out))

	var colors []Color
	require.NoError(t, json.Unmarshal([]byte(`["red","#00ff00","0,0,9"]`), &colors))
	require.Equal(t, []Color{{R: 255}, {G: 255}, {B: 9}}, colors)
	require.Error(t, json.Unmarshal([]byte(`["nope"]`), &colors))
}
