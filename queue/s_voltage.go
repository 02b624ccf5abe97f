package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassVoltage DeviceClass = "voltage"

func NewVoltageSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("voltage", device, e, out)
	s.conversion = siConversion(log, e, "v")
	return s
}
