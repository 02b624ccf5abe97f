package queue

import (
	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

type sensorFactory func(log *zap.SugaredLogger, device string, e esphome.Entity, out chan Metric) Sensor

var sensorFactories = map[DeviceClass]sensorFactory{
	DeviceClassTemperature:     NewTemperatureSensor,
	DeviceClassHumidity:        NewHumiditySensor,
	DeviceClassPressure:        NewPressureSensor,
	DeviceClassCO2:             NewCO2Sensor,
	DeviceClassCurrent:         NewCurrentSensor,
	DeviceClassVoltage:         NewVoltageSensor,
	DeviceClassSignalStrength:  NewSignalStrengthSensor,
	DeviceClassParticulate1:    NewParticulateSensor,
	DeviceClassParticulate25:   NewParticulateSensor,
	DeviceClassParticulate4:    NewParticulateSensor,
	DeviceClassParticulate10:   NewParticulateSensor,
	DeviceClassParticulateSize: NewParticulateSensor,
}

type sensorID struct {
	device string
	key    uint32
}

// AddDevice replaces all sensors of device with ones built from a fresh entity listing.
// Entities without a numeric state (text sensors, lights, ...) are not exported.
func (q *Queue) AddDevice(device string, entities []esphome.Entity) {
	q.Lock()
	defer q.Unlock()
	for id := range q.sensorMap {
		if id.device == device {
			delete(q.sensorMap, id)
		}
	}
	q.store.DropDevice(device)
	log := q.log.Named(device)
	for _, e := range entities {
		var sensor Sensor
		switch e.Kind {
		case esphome.KindSensor:
			if f, ok := sensorFactories[DeviceClass(e.DeviceClass)]; ok {
				log.Infof("adding %s sensor %s", e.DeviceClass, e)
				sensor = f(log, device, e, q.sendQueue)
			} else {
				log.Infof("adding generic sensor %s, unknown device class [%s]", e, e.DeviceClass)
				sensor = NewGenericSensor(log, device, e, q.sendQueue)
			}
		case esphome.KindBinarySensor:
			log.Infof("adding binary sensor %s", e)
			sensor = NewBinarySensor(log, device, e, q.sendQueue)
		default:
			log.Debugf("not exporting %s", e)
			continue
		}
		q.sensorMap[sensorID{device: device, key: e.Key}] = sensor
	}
}
