// Package bridge exposes a strip controller on MQTT.
//
// Requests published to ID/cmd are executed one at a time and answered on
// ID/reply. The retained ID/meta topic announces the strip while the bridge
// is online and is cleared (also as the MQTT will) when it goes away.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/strip.go/pkg/l0/strip"
	"github.com/robotalks/strip.go/pkg/l1/mqtt"
)

// DefaultQueueSize is the number of pending requests accepted before the
// bridge answers busy.
const DefaultQueueSize = 64

// Strip is the part of strip.Controller used by the bridge.
type Strip interface {
	Port() string
	IsConnected() bool
	SetStripLength(length uint16) error
	FillLEDs(first, count uint16, color strip.Color) error
	SetLEDData(first uint16, colors []strip.Color) error
	OutputData() error
	ClearAll() error
	Version() (strip.Version, error)
	MaxLEDs() (uint16, error)
}

// Bridge forwards MQTT requests to a Strip.
type Bridge struct {
	Queue       *mqtt.Queue
	Strip       Strip
	ID          string
	Description string

	reqCh      chan []byte
	announceCh chan struct{}
}

// New creates a Bridge connected to brokerURL.
func New(brokerURL, id string, s Strip) (*Bridge, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+id+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("strip:" + id)
	}
	return NewWithQueue(mqtt.NewQueue(opts, topicPrefix), id, s), nil
}

// NewWithQueue creates a Bridge on an existing queue.
func NewWithQueue(q *mqtt.Queue, id string, s Strip) *Bridge {
	b := &Bridge{
		Queue:      q,
		Strip:      s,
		ID:         id,
		reqCh:      make(chan []byte, DefaultQueueSize),
		announceCh: make(chan struct{}, 1),
	}
	q.OnConnect = func(*mqtt.Queue) { b.requestAnnounce() }
	return b
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "bridge:" + b.ID
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(b.ID+"/cmd", b.enqueue)
	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		sub.Close()
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	glog.Infof("bridge %s serving %s", b.ID, b.Strip.Port())
	for {
		select {
		case <-ctx.Done():
			b.Queue.PubWith(b.ID+"/meta", nil, 1, true).Wait()
			sub.Close()
			return b.Queue.Close()
		case <-b.announceCh:
			b.announce()
		case payload := <-b.reqCh:
			b.reply(b.Handle(payload))
		}
	}
}

func (b *Bridge) requestAnnounce() {
	select {
	case b.announceCh <- struct{}{}:
	default:
	}
}

func (b *Bridge) enqueue(topic string, payload []byte) {
	select {
	case b.reqCh <- payload:
	default:
		glog.Warningf("bridge %s: request queue full", b.ID)
		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			glog.V(2).Infof("bridge %s: dropped request is malformed: %v", b.ID, err)
		}
		b.reply(&Reply{ID: req.ID, Op: req.Op, Error: "request queue full", Kind: KindBusy})
	}
}

func (b *Bridge) reply(r *Reply) {
	if _, err := b.Queue.PubJSON(b.ID+"/reply", r, 0, false); err != nil {
		glog.Errorf("bridge %s: encode reply: %v", b.ID, err)
	}
}

func (b *Bridge) announce() {
	meta := Meta{
		Description: b.Description,
		Port:        b.Strip.Port(),
	}
	if b.Strip.IsConnected() {
		if v, err := b.Strip.Version(); err != nil {
			glog.Warningf("bridge %s: query version: %v", b.ID, err)
		} else {
			meta.Version = v.String()
		}
		if n, err := b.Strip.MaxLEDs(); err != nil {
			glog.Warningf("bridge %s: query max leds: %v", b.ID, err)
		} else {
			meta.MaxLEDs = n
		}
	}
	if _, err := b.Queue.PubJSON(b.ID+"/meta", &meta, 1, true); err != nil {
		glog.Errorf("bridge %s: encode meta: %v", b.ID, err)
	}
}

var errBadRequest = errors.New("bad request")

// Handle decodes and executes a single request.
func (b *Bridge) Handle(payload []byte) *Reply {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return &Reply{Error: fmt.Sprintf("%v: %v", errBadRequest, err), Kind: KindBadRequest}
	}
	r := &Reply{ID: req.ID, Op: req.Op}
	err := b.exec(&req, r)
	if err == nil {
		r.OK = true
		return r
	}
	r.Error = err.Error()
	if errors.Is(err, errBadRequest) {
		r.Kind = KindBadRequest
	} else {
		r.Kind = strip.Kind(err)
		glog.Warningf("bridge %s: %s failed: %v", b.ID, req.Op, err)
	}
	return r
}

func (b *Bridge) exec(req *Request, r *Reply) error {
	switch req.Op {
	case OpLength:
		return b.Strip.SetStripLength(req.Length)
	case OpFill:
		if req.Color == nil {
			return fmt.Errorf("%w: fill requires color", errBadRequest)
		}
		return b.Strip.FillLEDs(req.First, req.Count, *req.Color)
	case OpSet:
		return b.Strip.SetLEDData(req.First, req.Colors)
	case OpOutput:
		return b.Strip.OutputData()
	case OpClear:
		return b.Strip.ClearAll()
	case OpVersion:
		v, err := b.Strip.Version()
		if err == nil {
			r.Version = &v
		}
		return err
	case OpMax:
		n, err := b.Strip.MaxLEDs()
		if err == nil {
			r.MaxLEDs = &n
		}
		return err
	default:
		return fmt.Errorf("%w: unknown op %q", errBadRequest, req.Op)
	}
}
