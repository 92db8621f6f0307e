package bridge

import (
	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// Ops accepted in Request.Op.
const (
	OpLength  = "length"
	OpFill    = "fill"
	OpSet     = "set"
	OpOutput  = "output"
	OpClear   = "clear"
	OpVersion = "version"
	OpMax     = "max"
)

// Error kinds produced by the bridge itself, in addition to strip.Kind.
const (
	KindBadRequest = "bad_request"
	KindBusy       = "busy"
)

// Request is the payload of ID/cmd.
type Request struct {
	ID     string        `json:"id,omitempty"`
	Op     string        `json:"op"`
	Length uint16        `json:"length,omitempty"`
	First  uint16        `json:"first,omitempty"`
	Count  uint16        `json:"count,omitempty"`
	Color  *strip.Color  `json:"color,omitempty"`
	Colors []strip.Color `json:"colors,omitempty"`
}

// Reply is the payload of ID/reply.
type Reply struct {
	ID      string         `json:"id,omitempty"`
	Op      string         `json:"op"`
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Version *strip.Version `json:"version,omitempty"`
	MaxLEDs *uint16        `json:"max_leds,omitempty"`
}

// Meta is the retained payload of ID/meta.
type Meta struct {
	Description string `json:"description,omitempty"`
	Port        string `json:"port,omitempty"`
	Version     string `json:"version,omitempty"`
	MaxLEDs     uint16 `json:"max_leds,omitempty"`
}
