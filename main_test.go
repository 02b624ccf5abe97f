package main

import (
	"testing"

	"github.com/XANi/esphome2prom/config"
	"github.com/stretchr/testify/assert"
)

func TestParseDeviceFlag(t *testing.T) {
	assert.Equal(t,
		config.DeviceConfig{Name: "kitchen", Address: "10.0.0.5:6053", Password: "pw"},
		parseDeviceFlag("kitchen=10.0.0.5:6053", "pw"))
	assert.Equal(t,
		config.DeviceConfig{Address: "garage.local:6053"},
		parseDeviceFlag("garage.local:6053", ""))
}
