package collector

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/XANi/esphome2prom/api"
	"github.com/XANi/esphome2prom/esphome"
	"github.com/XANi/esphome2prom/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type behavior struct {
	rejectPassword bool
	// hangUpOnPing answers the first ping with a DisconnectRequest and closes the stream
	hangUpOnPing bool
}

type fakeDevice struct {
	ln       net.Listener
	behavior behavior
	received []api.MessageType
	sync.Mutex
}

func newFakeDevice(t *testing.T, b behavior) *fakeDevice {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	d := &fakeDevice{ln: ln, behavior: b}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go d.serve(conn)
		}
	}()
	return d
}

func (d *fakeDevice) Addr() string {
	return d.ln.Addr().String()
}

func (d *fakeDevice) Received() []api.MessageType {
	d.Lock()
	defer d.Unlock()
	return append([]api.MessageType(nil), d.received...)
}

func (d *fakeDevice) serve(conn net.Conn) {
	defer conn.Close()
	r := frame.NewReader(conn)
	w := frame.NewWriter(conn)
	send := func(msgs ...api.Message) error {
		for _, m := range msgs {
			b, err := m.Marshal()
			if err != nil {
				return err
			}
			if err := w.WriteFrame(uint32(m.MessageType()), b); err != nil {
				return err
			}
		}
		return nil
	}
	for {
		h, err := r.ReadHeader()
		if err != nil {
			return
		}
		if err := r.SkipBody(h.Length); err != nil {
			return
		}
		typ := api.MessageType(h.Type)
		d.Lock()
		d.received = append(d.received, typ)
		d.Unlock()
		switch typ {
		case api.HelloRequestType:
			err = send(&api.HelloResponse{APIVersionMajor: 1, APIVersionMinor: 9, ServerInfo: "fake 1.0", Name: "kitchen"})
		case api.ConnectRequestType:
			err = send(&api.ConnectResponse{InvalidPassword: d.behavior.rejectPassword})
		case api.DeviceInfoRequestType:
			err = send(&api.DeviceInfoResponse{Name: "kitchen", Model: "esp32dev", EsphomeVersion: "2024.1.0"})
		case api.ListEntitiesRequestType:
			err = send(
				&api.ListEntitiesResponse{Kind: api.ListEntitiesSensorResponseType, ObjectID: "temp", Key: 1, Name: "Temperature", DeviceClass: "temperature", UnitOfMeasurement: "°C"},
				&api.ListEntitiesResponse{Kind: api.ListEntitiesBinarySensorResponseType, ObjectID: "door", Key: 2, Name: "Door"},
				&api.ListEntitiesDoneResponse{},
			)
		case api.SubscribeStatesRequestType:
			err = send(&api.SensorStateResponse{Key: 1, State: 21.5})
		case api.PingRequestType:
			if d.behavior.hangUpOnPing {
				send(&api.DisconnectRequest{})
				// wait for the acknowledgement before closing
				if h, err := r.ReadHeader(); err == nil {
					r.SkipBody(h.Length)
				}
				return
			}
			err = send(&api.PingResponse{})
		case api.DisconnectRequestType:
			send(&api.DisconnectResponse{})
			return
		}
		if err != nil {
			return
		}
	}
}

type recordingSink struct {
	devices map[string][]esphome.Entity
	states  map[uint32]esphome.State
	sync.Mutex
}

func newRecordingSink() *recordingSink {
	return &recordingSink{devices: map[string][]esphome.Entity{}, states: map[uint32]esphome.State{}}
}

func (s *recordingSink) AddDevice(device string, entities []esphome.Entity) {
	s.Lock()
	defer s.Unlock()
	s.devices[device] = entities
}

func (s *recordingSink) ProcessState(device string, key uint32, state esphome.State) error {
	s.Lock()
	defer s.Unlock()
	s.states[key] = state
	return nil
}

func (s *recordingSink) State(key uint32) (esphome.State, bool) {
	s.Lock()
	defer s.Unlock()
	st, ok := s.states[key]
	return st, ok
}

func TestNewValidation(t *testing.T) {
	_, err := New(&Config{Sink: newRecordingSink()})
	assert.Error(t, err)
	_, err = New(&Config{Address: "127.0.0.1:6053"})
	assert.Error(t, err)

	c, err := New(&Config{Address: "127.0.0.1:6053", Sink: newRecordingSink()})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6053", c.Name())
	assert.Equal(t, 10*time.Second, c.cfg.PingInterval)
	assert.False(t, c.Status().Connected)
}

func runCollector(t *testing.T, c *Collector) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("collector did not stop")
		}
	}
}

func TestCollectorSession(t *testing.T) {
	dev := newFakeDevice(t, behavior{})
	sink := newRecordingSink()
	c, err := New(&Config{
		Name:              "kitchen",
		Address:           dev.Addr(),
		PingInterval:      20 * time.Millisecond,
		ReconnectInterval: 50 * time.Millisecond,
		Sink:              sink,
	})
	require.NoError(t, err)
	stop := runCollector(t, c)

	require.Eventually(t, func() bool {
		_, ok := sink.State(1)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	st, _ := sink.State(1)
	assert.Equal(t, esphome.Measurement(21.5), st)

	sink.Lock()
	assert.Len(t, sink.devices["kitchen"], 2)
	sink.Unlock()

	require.Eventually(t, func() bool {
		s := c.Status()
		return s.Connected && len(s.Entities) == 2 && s.Entities[0].State != nil
	}, 2*time.Second, 10*time.Millisecond)
	s := c.Status()
	assert.Equal(t, "fake 1.0", s.ServerInfo)
	require.NotNil(t, s.Info)
	assert.Equal(t, "esp32dev", s.Info.Model)
	assert.NotEmpty(t, s.Session)
	assert.Empty(t, s.LastError)
	assert.Equal(t, esphome.Measurement(21.5), *s.Entities[0].State)
	assert.Nil(t, s.Entities[1].State)

	stop()
	assert.Eventually(t, func() bool {
		rcv := dev.Received()
		return len(rcv) > 0 && rcv[len(rcv)-1] == api.DisconnectRequestType
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []api.MessageType{
		api.HelloRequestType,
		api.ConnectRequestType,
		api.DeviceInfoRequestType,
		api.ListEntitiesRequestType,
		api.SubscribeStatesRequestType,
	}, dev.Received()[:5])
	assert.False(t, c.Status().Connected)
}

func TestCollectorInvalidPassword(t *testing.T) {
	dev := newFakeDevice(t, behavior{rejectPassword: true})
	c, err := New(&Config{
		Address:           dev.Addr(),
		Password:          "wrong",
		PingInterval:      20 * time.Millisecond,
		ReconnectInterval: time.Hour,
		Sink:              newRecordingSink(),
	})
	require.NoError(t, err)
	stop := runCollector(t, c)
	defer stop()

	require.Eventually(t, func() bool {
		return c.Status().LastError != ""
	}, 2*time.Second, 10*time.Millisecond)
	s := c.Status()
	assert.Contains(t, s.LastError, esphome.ErrInvalidPassword.Error())
	assert.False(t, s.Connected)
	assert.Empty(t, s.Entities)
}

func TestCollectorDialFailure(t *testing.T) {
	c, err := New(&Config{
		Address:           "127.0.0.1:1",
		ReconnectInterval: time.Hour,
		Sink:              newRecordingSink(),
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("no route to host")
		},
	})
	require.NoError(t, err)
	stop := runCollector(t, c)
	defer stop()
	require.Eventually(t, func() bool {
		return c.Status().LastError != ""
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, c.Status().LastError, "no route to host")
}

func TestCollectorDeviceHangsUp(t *testing.T) {
	dev := newFakeDevice(t, behavior{hangUpOnPing: true})
	c, err := New(&Config{
		Address:           dev.Addr(),
		PingInterval:      20 * time.Millisecond,
		ReconnectInterval: time.Hour,
		Sink:              newRecordingSink(),
	})
	require.NoError(t, err)
	stop := runCollector(t, c)
	defer stop()

	require.Eventually(t, func() bool {
		return c.Status().LastError != ""
	}, 2*time.Second, 10*time.Millisecond)
	s := c.Status()
	assert.Contains(t, s.LastError, errDeviceDisconnected.Error())
	assert.False(t, s.Connected)
}
