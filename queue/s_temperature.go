package queue

import (
	"math"
	"strings"

	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassTemperature DeviceClass = "temperature"

func NewTemperatureSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("temperature", device, e, out)
	if strings.Contains(strings.ToUpper(e.Unit), "K") {
		s.conversion = func(k float64) (c float64) { return k - 273.15 }
	} else if strings.Contains(strings.ToUpper(e.Unit), "F") {
		s.conversion = func(f float64) (c float64) {
			return float64(math.Round((f-32.0)*(5.0/9.0)*10.0)) / 10.0
		}
	}
	return s
}
