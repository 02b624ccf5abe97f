// Package esphome is a client for the ESPHome native API.
//
// A Connection owns one ordered byte stream. Every frame header is read through
// NextHeader, which answers pings, time queries and disconnect notices and
// records entity state pushes before handing any other frame to the caller.
// A Connection is not safe for concurrent use; callers that share one must
// serialize access themselves.
package esphome

import (
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/XANi/esphome2prom/api"
	"github.com/XANi/esphome2prom/frame"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const DefaultClientInfo = "esphome2prom"

type Config struct {
	Logger *zap.SugaredLogger
	// Clock answers GetTime requests from the device. Defaults to the wall clock.
	Clock clock.Clock
	// OnEvent is called synchronously from the read loop.
	OnEvent    func(Event)
	ClientInfo string
}

type Connection struct {
	r *frame.Reader
	w *frame.Writer

	states map[uint32]State

	clock      clock.Clock
	log        *zap.SugaredLogger
	onEvent    func(Event)
	clientInfo string

	connected        bool
	peerDisconnected bool
	err              error
}

func NewConnection(r io.Reader, w io.Writer, cfg *Config) *Connection {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Connection{
		r:          frame.NewReader(r),
		w:          frame.NewWriter(w),
		states:     map[uint32]State{},
		clock:      cfg.Clock,
		log:        cfg.Logger,
		onEvent:    cfg.OnEvent,
		clientInfo: cfg.ClientInfo,
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.clientInfo == "" {
		c.clientInfo = DefaultClientInfo
	}
	return c
}

// fail records the first fatal error; every later call reports it.
func (c *Connection) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}

func (c *Connection) check() error {
	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionBroken, c.err)
	}
	return nil
}

// Err returns the error that broke the connection, if any.
func (c *Connection) Err() error {
	return c.err
}

// PeerDisconnected reports whether the device sent a DisconnectRequest. The
// request has been acknowledged; closing the transport is up to the caller.
func (c *Connection) PeerDisconnected() bool {
	return c.peerDisconnected
}

func (c *Connection) Send(msg api.Message) error {
	if err := c.check(); err != nil {
		return err
	}
	payload, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrCodec, msg.MessageType(), err)
	}
	if err := c.w.WriteFrame(uint32(msg.MessageType()), payload); err != nil {
		return c.fail(fmt.Errorf("%w: writing %s: %w", ErrIO, msg.MessageType(), err))
	}
	return nil
}

// Request sends req and decodes the next application frame into reply. Push
// messages arriving in between are handled transparently. Any other frame
// fails with *UnexpectedResponseError after its body has been skipped.
func (c *Connection) Request(req, reply api.Message) error {
	if err := c.Send(req); err != nil {
		return err
	}
	return c.Receive(reply)
}

// Receive waits for the next application frame and decodes it into msg.
func (c *Connection) Receive(msg api.Message) error {
	h, err := c.NextHeader()
	if err != nil {
		return err
	}
	if h.Type != uint32(msg.MessageType()) {
		if err := c.SkipBody(h); err != nil {
			return err
		}
		return &UnexpectedResponseError{Expected: msg.MessageType(), Received: api.MessageType(h.Type)}
	}
	return c.ReadBody(h, msg)
}

func (c *Connection) readHeader() (frame.Header, error) {
	if err := c.check(); err != nil {
		return frame.Header{}, err
	}
	h, err := c.r.ReadHeader()
	switch {
	case err == nil:
		return h, nil
	case errors.Is(err, frame.ErrInvalidMarker), errors.Is(err, frame.ErrVarintOverflow):
		return h, c.fail(fmt.Errorf("framing: %w", err))
	case c.peerDisconnected && errors.Is(err, io.EOF):
		// device announced the disconnect and closed the stream
		return h, c.fail(fmt.Errorf("%w: %w: reading header: %w", ErrUnexpectedTermination, ErrIO, err))
	default:
		return h, c.fail(fmt.Errorf("%w: reading header: %w", ErrIO, err))
	}
}

// ReadBody consumes the payload announced by h and decodes it into msg.
func (c *Connection) ReadBody(h frame.Header, msg api.Message) error {
	if err := c.check(); err != nil {
		return err
	}
	body, err := c.r.ReadBody(h.Length)
	if err != nil {
		return c.fail(fmt.Errorf("%w: reading %s body: %w", ErrIO, api.MessageType(h.Type), err))
	}
	if err := msg.Unmarshal(body); err != nil {
		return c.fail(fmt.Errorf("%w: decoding %s: %w", ErrCodec, api.MessageType(h.Type), err))
	}
	return nil
}

// SkipBody discards the payload announced by h.
func (c *Connection) SkipBody(h frame.Header) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.r.SkipBody(h.Length); err != nil {
		return c.fail(fmt.Errorf("%w: skipping %s body: %w", ErrIO, api.MessageType(h.Type), err))
	}
	return nil
}

// LastState is a pure cache lookup. false means no state was pushed for key yet.
func (c *Connection) LastState(key uint32) (State, bool) {
	s, ok := c.states[key]
	return s, ok
}

// States returns a copy of the state cache.
func (c *Connection) States() map[uint32]State {
	return maps.Clone(c.states)
}
