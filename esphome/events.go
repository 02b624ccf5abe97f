package esphome

import (
	"github.com/XANi/esphome2prom/api"
)

type EventType int

const (
	// EventPush fires after a ping, time or disconnect request from the device has been answered.
	EventPush EventType = iota
	EventStateUpdated
	// EventStateSkipped fires for state pushes of kinds without a State representation.
	EventStateSkipped
	// EventUnknownMessage carries an *UnknownMessageTypeError in Err.
	EventUnknownMessage
)

func (t EventType) String() string {
	switch t {
	case EventPush:
		return "push"
	case EventStateUpdated:
		return "state_updated"
	case EventStateSkipped:
		return "state_skipped"
	case EventUnknownMessage:
		return "unknown_message"
	default:
		return "unknown"
	}
}

type Event struct {
	Type        EventType
	MessageType api.MessageType
	// Key and State are set for EventStateUpdated
	Key   uint32
	State State
	Err   error
}

func (c *Connection) emit(ev Event) {
	switch ev.Type {
	case EventStateUpdated:
		c.log.Debugw("state update", "key", ev.Key, "state", ev.State)
	case EventUnknownMessage:
		c.log.Warnw("skipped unknown message", "err", ev.Err)
	default:
		c.log.Debugw("push handled", "type", ev.MessageType, "event", ev.Type)
	}
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
