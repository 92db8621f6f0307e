package strip

import "strconv"

// Opcode selects a strip command.
type Opcode byte

// Opcodes understood by the firmware.
const (
	OpSetLength   Opcode = 'L'
	OpFill        Opcode = 'F'
	OpReceiveData Opcode = 'R'
	OpOutput      Opcode = 'O'
	OpClear       Opcode = 'C'
	OpVersion     Opcode = 'V'
	OpMaxLEDs     Opcode = 'M'
)

// Acknowledgement bytes.
const (
	Ack  byte = 'A'
	Nack byte = 'N'
)

var opcodeNames = map[Opcode]string{
	OpSetLength:   "set-length",
	OpFill:        "fill",
	OpReceiveData: "receive-data",
	OpOutput:      "output",
	OpClear:       "clear",
	OpVersion:     "version",
	OpMaxLEDs:     "max-leds",
}

// String returns the command name.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "opcode(" + strconv.Itoa(int(o)) + ")"
}

// PutWord encodes v big-endian.
func PutWord(v uint16) [2]byte {
	return [2]byte{byte(v >> 8), byte(v)}
}

// Word decodes a big-endian 16-bit value.
func Word(b [2]byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// Version is the firmware version reported by OpVersion.
type Version struct {
	Major uint8 `json:"major"`
	Minor uint8 `json:"minor"`
}

// String returns "major.minor".
func (v Version) String() string {
	return strconv.Itoa(int(v.Major)) + "." + strconv.Itoa(int(v.Minor))
}

// Command is one outgoing request: the opcode, its 16-bit parameters
// and an optional color payload.
type Command struct {
	Op     Opcode
	Words  []uint16
	Colors []Color
}

// segments splits the frame into the units written to the port:
// the opcode, each word and each color.
func (c *Command) segments() [][]byte {
	segs := make([][]byte, 0, 1+len(c.Words)+len(c.Colors))
	segs = append(segs, []byte{byte(c.Op)})
	for _, w := range c.Words {
		b := PutWord(w)
		segs = append(segs, b[:])
	}
	for _, color := range c.Colors {
		segs = append(segs, color.AppendTo(make([]byte, 0, 3)))
	}
	return segs
}

// Bytes returns the encoded frame.
func (c *Command) Bytes() []byte {
	b := make([]byte, 0, 1+len(c.Words)*2+len(c.Colors)*3)
	b = append(b, byte(c.Op))
	for _, w := range c.Words {
		b = append(b, byte(w>>8), byte(w))
	}
	for _, color := range c.Colors {
		b = color.AppendTo(b)
	}
	return b
}
