package queue

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// store keeps the latest value of every series and exposes them as gauges.
// Label sets differ per metric name so descriptors are built at collect time.
type store struct {
	prefix  string
	metrics map[string]Metric
	sync.Mutex
}

func newStore(prefix string) *store {
	return &store{prefix: prefix, metrics: map[string]Metric{}}
}

func seriesKey(m Metric) string {
	var b strings.Builder
	b.WriteString(m.Name)
	for _, k := range slices.Sorted(maps.Keys(m.Labels)) {
		b.WriteString("\x00")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(m.Labels[k])
	}
	return b.String()
}

func (s *store) Set(m Metric) {
	s.Lock()
	s.metrics[seriesKey(m)] = m
	s.Unlock()
}

func (s *store) DropDevice(device string) {
	s.Lock()
	defer s.Unlock()
	for k, m := range s.metrics {
		if m.Labels["device"] == device {
			delete(s.metrics, k)
		}
	}
}

// Describe sends nothing which makes the collector unchecked.
func (s *store) Describe(ch chan<- *prometheus.Desc) {}

func (s *store) Collect(ch chan<- prometheus.Metric) {
	s.Lock()
	defer s.Unlock()
	for _, m := range s.metrics {
		names := slices.Sorted(maps.Keys(m.Labels))
		values := make([]string, len(names))
		for i, n := range names {
			values[i] = m.Labels[n]
		}
		desc := prometheus.NewDesc(s.prefix+m.Name, "ESPHome "+m.Name+" reading", names, nil)
		metric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, m.Value, values...)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			continue
		}
		ch <- metric
	}
}
