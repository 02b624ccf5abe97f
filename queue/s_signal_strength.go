package queue

import (
	"strings"

	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassSignalStrength DeviceClass = "signal_strength"

func NewSignalStrengthSensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	s := newMeasurement("signal_strength", device, e, out)
	unit := e.Unit
	//normalize unit
	switch strings.ToLower(unit) {
	case "dbm":
		unit = "dBm"
	case "db":
		unit = "dB"
	}
	s.labels["unit"] = unit
	return s
}
