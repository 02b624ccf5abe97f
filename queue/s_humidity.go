package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

var DeviceClassHumidity DeviceClass = "humidity"

func NewHumiditySensor(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor {
	return newMeasurement("humidity", device, e, out)
}
