package queue

import (
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/XANi/esphome2prom/esphome"
)

type Sensor interface {
	ProcessState(state esphome.State) error
}

type Metric struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Value  float64           `json:"value"`
	TS     time.Time         `json:"ts"`
}

type DeviceClass string

// measurement backs every numeric sensor; device class files only pick the
// metric name, labels and unit conversion.
type measurement struct {
	name       string
	labels     map[string]string
	conversion func(float64) float64
	queue      chan Metric
}

func newMeasurement(name string, device string, e esphome.Entity, out chan Metric) *measurement {
	return &measurement{
		name: name,
		labels: map[string]string{
			"device": device,
			"sensor": e.Name,
		},
		conversion: func(v float64) float64 { return v },
		queue:      out,
	}
}

func (m *measurement) ProcessState(state esphome.State) error {
	v, ok := state.Float()
	if !ok {
		return fmt.Errorf("state [%s] of %s is not numeric", state, m.name)
	}
	// device reports NaN until the first reading
	if math.IsNaN(v) {
		return nil
	}
	metric := Metric{
		Name:   m.name,
		Labels: maps.Clone(m.labels),
		Value:  m.conversion(v),
		TS:     time.Now(),
	}
	select {
	case m.queue <- metric:
		return nil
	case <-time.After(time.Second):
		return fmt.Errorf("timeout on send queue")
	}
}
