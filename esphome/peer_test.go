package esphome

import (
	"bytes"
	"io"
	"testing"

	"github.com/XANi/esphome2prom/api"
	"github.com/XANi/esphome2prom/frame"
	"github.com/stretchr/testify/require"
)

// peer is a scripted device: frames queued in `in` are what the client will
// read, `out` collects whatever the client writes.
type peer struct {
	in     bytes.Buffer
	out    bytes.Buffer
	events []Event
}

func (p *peer) conn(cfg *Config) *Connection {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.OnEvent = func(ev Event) { p.events = append(p.events, ev) }
	return NewConnection(&p.in, &p.out, cfg)
}

func (p *peer) send(t *testing.T, msgs ...api.Message) {
	t.Helper()
	for _, m := range msgs {
		b, err := m.Marshal()
		require.NoError(t, err)
		p.in.Write(frame.Append(nil, uint32(m.MessageType()), b))
	}
}

func (p *peer) raw(tag uint32, payload []byte) {
	p.in.Write(frame.Append(nil, tag, payload))
}

type sentFrame struct {
	Type api.MessageType
	Body []byte
}

func (p *peer) sent(t *testing.T) []sentFrame {
	t.Helper()
	r := frame.NewReader(bytes.NewReader(p.out.Bytes()))
	var frames []sentFrame
	for {
		h, err := r.ReadHeader()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		body, err := r.ReadBody(h.Length)
		require.NoError(t, err)
		frames = append(frames, sentFrame{Type: api.MessageType(h.Type), Body: body})
	}
}

func (p *peer) sentTypes(t *testing.T) []api.MessageType {
	var types []api.MessageType
	for _, f := range p.sent(t) {
		types = append(types, f.Type)
	}
	return types
}

func (p *peer) eventsOf(typ EventType) []Event {
	var out []Event
	for _, ev := range p.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// authenticated runs hello and connect against scripted replies.
func authenticated(t *testing.T, p *peer, cfg *Config) (*Connection, *AuthenticatedDevice) {
	t.Helper()
	p.send(t,
		&api.HelloResponse{APIVersionMajor: 1, APIVersionMinor: 3, ServerInfo: "kitchen (esphome v2021.10.0)", Name: "kitchen"},
		&api.ConnectResponse{},
	)
	c := p.conn(cfg)
	d, err := c.Connect()
	require.NoError(t, err)
	ad, err := d.Authenticate("secret")
	require.NoError(t, err)
	p.out.Reset()
	return c, ad
}
