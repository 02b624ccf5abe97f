package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassCurrent DeviceClass = "current"

func NewCurrentSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("current", device, e, out)
	s.conversion = siConversion(log, e, "a")
	return s
}
