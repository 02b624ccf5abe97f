package esphome

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type EntityKind int

const (
	KindBinarySensor EntityKind = iota
	KindCamera
	KindClimate
	KindCover
	KindFan
	KindLight
	KindNumber
	KindSelect
	KindSensor
	KindServices
	KindSwitch
	KindTextSensor
)

var entityKindNames = map[EntityKind]string{
	KindBinarySensor: "binary_sensor",
	KindCamera:       "camera",
	KindClimate:      "climate",
	KindCover:        "cover",
	KindFan:          "fan",
	KindLight:        "light",
	KindNumber:       "number",
	KindSelect:       "select",
	KindSensor:       "sensor",
	KindServices:     "services",
	KindSwitch:       "switch",
	KindTextSensor:   "text_sensor",
}

func (k EntityKind) String() string {
	if n, ok := entityKindNames[k]; ok {
		return n
	}
	return "EntityKind(" + strconv.Itoa(int(k)) + ")"
}

func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type EntityInfo struct {
	Name string `json:"name"`
	// Key correlates state pushes with the entity. Assumed unique per device.
	Key uint32 `json:"key"`
}

type ExtendedInfo struct {
	ObjectID string `json:"object_id"`
	UniqueID string `json:"unique_id"`
}

// Entity is one addressable component of a device as returned by ListEntities.
// Extended is nil only for KindServices.
type Entity struct {
	EntityInfo
	Kind     EntityKind    `json:"kind"`
	Extended *ExtendedInfo `json:"extended,omitempty"`
	// DeviceClass and Unit are only reported for sensors and binary sensors.
	DeviceClass string `json:"device_class,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

func (e Entity) String() string {
	return fmt.Sprintf("%s %q (key %d)", e.Kind, e.Name, e.Key)
}

// ID returns object_id when known and falls back to the key.
func (e Entity) ID() string {
	if e.Extended != nil && e.Extended.ObjectID != "" {
		return e.Extended.ObjectID
	}
	return strconv.FormatUint(uint64(e.Key), 10)
}

type StateKind int

const (
	StateBinary StateKind = iota
	StateMeasurement
	StateText
)

func (k StateKind) String() string {
	switch k {
	case StateBinary:
		return "binary"
	case StateMeasurement:
		return "measurement"
	case StateText:
		return "text"
	default:
		return "StateKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// State is the last value pushed for an entity. Only the field matching Kind is meaningful.
type State struct {
	Kind        StateKind
	Binary      bool
	Measurement float32
	Text        string
}

func Binary(v bool) State         { return State{Kind: StateBinary, Binary: v} }
func Measurement(v float32) State { return State{Kind: StateMeasurement, Measurement: v} }
func Text(v string) State         { return State{Kind: StateText, Text: v} }

// Float projects numeric states; binary maps to 0/1 and text is not numeric.
func (s State) Float() (float64, bool) {
	switch s.Kind {
	case StateBinary:
		if s.Binary {
			return 1, true
		}
		return 0, true
	case StateMeasurement:
		return float64(s.Measurement), true
	default:
		return 0, false
	}
}

func (s State) String() string {
	switch s.Kind {
	case StateBinary:
		return strconv.FormatBool(s.Binary)
	case StateMeasurement:
		return strconv.FormatFloat(float64(s.Measurement), 'g', -1, 32)
	default:
		return s.Text
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StateBinary:
		return []byte(strconv.FormatBool(s.Binary)), nil
	case StateMeasurement:
		f := float64(s.Measurement)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(f, 'g', -1, 32)), nil
	default:
		return json.Marshal(s.Text)
	}
}
