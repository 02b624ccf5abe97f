package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

func NewBinarySensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("binary_sensor", device, e, out)
	s.labels["device_class"] = e.DeviceClass
	return s
}
