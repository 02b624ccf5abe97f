package queue

import (
	"strings"

	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassPressure DeviceClass = "pressure"

func NewPressureSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("pressure", device, e, out)
	switch strings.ToLower(e.Unit) {
	case "hpa", "mbar":
	case "pa":
		s.conversion = func(v float64) float64 { return v / 100 }
	case "kpa":
		s.conversion = func(v float64) float64 { return v * 10 }
	default:
		log.Warnf("sensor [%s] does not use hPa unit [%s], add conversion", e, e.Unit)
	}
	return s
}
