package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassCO2 DeviceClass = "carbon_dioxide"

func NewCO2Sensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	return newMeasurement("co2", device, e, out)
}
