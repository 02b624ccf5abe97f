package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

// NewGenericSensor exports sensors without a dedicated device class as-is.
func NewGenericSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("sensor", device, e, out)
	s.labels["unit"] = e.Unit
	s.labels["device_class"] = e.DeviceClass
	return s
}
