package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/common/model"
)

type ConfigWithDefault interface {
	GetDefaultConfig() string
}

type DeviceConfig struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

type Config struct {
	ListenAddress     string            `yaml:"address"`
	MQTTAddress       string            `yaml:"mqtt_address"`
	MQTTTopicPrefix   string            `yaml:"mqtt_topic_prefix"`
	PrometheusPrefix  string            `yaml:"prometheus_prefix"`
	Debug             bool              `yaml:"debug"`
	PProfAddress      string            `yaml:"pprof_address"`
	ExtraLabels       map[string]string `yaml:"extra_labels"`
	PingInterval      time.Duration     `yaml:"ping_interval"`
	ReconnectInterval time.Duration     `yaml:"reconnect_interval"`
	Devices           []DeviceConfig    `yaml:"devices"`
}

func (c *Config) GetDefaultConfig() string {
	h, _ := os.Hostname()
	cfg := Config{
		ListenAddress:     "127.0.0.1:3001",
		MQTTAddress:       "",
		MQTTTopicPrefix:   "esphome2prom",
		PrometheusPrefix:  "esphome_",
		Debug:             false,
		PProfAddress:      "",
		PingInterval:      time.Second * 10,
		ReconnectInterval: time.Second * 30,
		ExtraLabels: map[string]string{
			"host": h,
		},
		Devices: []DeviceConfig{
			{Name: "kitchen", Address: "kitchen.local:6053", Password: ""},
		},
	}
	b, _ := yaml.Marshal(&cfg)
	return string(b)
}

// Validate fills in intervals left at zero, checks device entries and that
// extra labels and the prefix are usable in prometheus series.
func (c *Config) Validate() error {
	for k := range c.ExtraLabels {
		if !model.LabelName(k).IsValid() {
			return fmt.Errorf("extra label [%s] is not a valid prometheus label name", k)
		}
	}
	if c.PrometheusPrefix != "" && !model.IsValidMetricName(model.LabelValue(c.PrometheusPrefix+"x")) {
		return fmt.Errorf("prefix [%s] is not valid in a prometheus metric name", c.PrometheusPrefix)
	}
	if c.PingInterval <= 0 {
		c.PingInterval = time.Second * 10
	}
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = time.Second * 30
	}
	names := map[string]bool{}
	for i, d := range c.Devices {
		if d.Address == "" {
			return fmt.Errorf("device #%d [%s] has no address", i, d.Name)
		}
		if d.Name == "" {
			c.Devices[i].Name = d.Address
		}
		if names[c.Devices[i].Name] {
			return fmt.Errorf("duplicate device name [%s]", c.Devices[i].Name)
		}
		names[c.Devices[i].Name] = true
	}
	return nil
}
