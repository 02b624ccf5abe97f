package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassParticulate25 DeviceClass = "pm25"
var DeviceClassParticulate1 DeviceClass = "pm1"
var DeviceClassParticulate4 DeviceClass = "pm4"
var DeviceClassParticulate10 DeviceClass = "pm10"
var DeviceClassParticulateSize DeviceClass = "aqi"

// NewParticulateSensor keeps the unit as a label, ug/m3 and particle counts share one metric.
func NewParticulateSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("air_quality", device, e, out)
	s.labels["unit"] = e.Unit
	s.labels["size"] = e.DeviceClass
	return s
}
