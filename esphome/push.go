package esphome

import (
	"github.com/XANi/esphome2prom/api"
	"github.com/XANi/esphome2prom/frame"
)

type pushHandler func(c *Connection, h frame.Header) error

var pushHandlers = map[api.MessageType]pushHandler{
	api.PingRequestType:       handlePing,
	api.DisconnectRequestType: handleDisconnect,
	api.GetTimeRequestType:    handleGetTime,

	api.BinarySensorStateResponseType: handleBinarySensorState,
	api.SensorStateResponseType:       handleSensorState,
	api.TextSensorStateResponseType:   handleTextSensorState,

	// no State representation for these; bodies are skipped undecoded
	api.CoverStateResponseType:   skipState,
	api.FanStateResponseType:     skipState,
	api.LightStateResponseType:   skipState,
	api.SwitchStateResponseType:  skipState,
	api.ClimateStateResponseType: skipState,
	api.NumberStateResponseType:  skipState,
	api.SelectStateResponseType:  skipState,
}

// NextHeader returns the next frame header the caller has to deal with. Push
// messages are consumed and handled on the way; frames with unknown tags are
// skipped by their declared length and reported as EventUnknownMessage.
// The payload of the returned frame is still in the stream and must be
// consumed with ReadBody or SkipBody.
//
// This is the only place frame headers are read.
func (c *Connection) NextHeader() (frame.Header, error) {
	for {
		h, err := c.readHeader()
		if err != nil {
			return frame.Header{}, err
		}
		mt, known := api.Lookup(h.Type)
		if !known {
			if err := c.SkipBody(h); err != nil {
				return frame.Header{}, err
			}
			c.emit(Event{
				Type:        EventUnknownMessage,
				MessageType: mt,
				Err:         &UnknownMessageTypeError{Type: h.Type, Length: h.Length},
			})
			continue
		}
		handler, ok := pushHandlers[mt]
		if !ok {
			return h, nil
		}
		if err := handler(c, h); err != nil {
			return frame.Header{}, err
		}
	}
}

func handlePing(c *Connection, h frame.Header) error {
	if err := c.ReadBody(h, &api.PingRequest{}); err != nil {
		return err
	}
	if err := c.Send(&api.PingResponse{}); err != nil {
		return err
	}
	c.emit(Event{Type: EventPush, MessageType: api.PingRequestType})
	return nil
}

func handleDisconnect(c *Connection, h frame.Header) error {
	if err := c.ReadBody(h, &api.DisconnectRequest{}); err != nil {
		return err
	}
	if err := c.Send(&api.DisconnectResponse{}); err != nil {
		return err
	}
	c.peerDisconnected = true
	c.emit(Event{Type: EventPush, MessageType: api.DisconnectRequestType})
	return nil
}

func handleGetTime(c *Connection, h frame.Header) error {
	if err := c.ReadBody(h, &api.GetTimeRequest{}); err != nil {
		return err
	}
	res := &api.GetTimeResponse{EpochSeconds: uint32(c.clock.Now().Unix())}
	if err := c.Send(res); err != nil {
		return err
	}
	c.emit(Event{Type: EventPush, MessageType: api.GetTimeRequestType})
	return nil
}

func (c *Connection) setState(mt api.MessageType, key uint32, s State) {
	c.states[key] = s
	c.emit(Event{Type: EventStateUpdated, MessageType: mt, Key: key, State: s})
}

func handleBinarySensorState(c *Connection, h frame.Header) error {
	var m api.BinarySensorStateResponse
	if err := c.ReadBody(h, &m); err != nil {
		return err
	}
	c.setState(api.BinarySensorStateResponseType, m.Key, Binary(m.State))
	return nil
}

func handleSensorState(c *Connection, h frame.Header) error {
	var m api.SensorStateResponse
	if err := c.ReadBody(h, &m); err != nil {
		return err
	}
	c.setState(api.SensorStateResponseType, m.Key, Measurement(m.State))
	return nil
}

func handleTextSensorState(c *Connection, h frame.Header) error {
	var m api.TextSensorStateResponse
	if err := c.ReadBody(h, &m); err != nil {
		return err
	}
	c.setState(api.TextSensorStateResponseType, m.Key, Text(m.State))
	return nil
}

func skipState(c *Connection, h frame.Header) error {
	if err := c.SkipBody(h); err != nil {
		return err
	}
	c.emit(Event{Type: EventStateSkipped, MessageType: api.MessageType(h.Type)})
	return nil
}
