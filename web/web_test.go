package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/XANi/esphome2prom/collector"
	"github.com/XANi/esphome2prom/esphome"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBackend(t *testing.T, devices []collector.Status) *WebBackend {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "esphome_test_gauge"})
	g.Set(3)
	reg.MustRegister(g)
	w, err := New(Config{
		Logger:     zap.NewNop().Sugar(),
		ListenAddr: "127.0.0.1:0",
		Version:    "test",
		Gatherer:   reg,
		Devices:    func() []collector.Status { return devices },
	})
	require.NoError(t, err)
	return w
}

func get(t *testing.T, w *WebBackend, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresLoggerAndAddr(t *testing.T) {
	_, err := New(Config{ListenAddr: ":3001"})
	assert.Error(t, err)
	_, err = New(Config{Logger: zap.NewNop().Sugar()})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	rec := get(t, testBackend(t, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "esphome_test_gauge 3")
}

func TestDevices(t *testing.T) {
	st := esphome.Measurement(21.5)
	w := testBackend(t, []collector.Status{
		{
			Name:      "kitchen",
			Address:   "10.0.0.5:6053",
			Connected: true,
			Entities: []collector.EntityStatus{{
				Entity: esphome.Entity{EntityInfo: esphome.EntityInfo{Name: "Temperature", Key: 1}, Kind: esphome.KindSensor},
				State:  &st,
			}},
		},
		{Name: "garage", Address: "10.0.0.6:6053", LastError: "dial: timeout"},
	})

	rec := get(t, w, "/api/devices")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "kitchen", out[0]["name"])
	assert.Equal(t, true, out[0]["connected"])
	assert.Equal(t, "dial: timeout", out[1]["last_error"])

	rec = get(t, w, "/api/devices/kitchen")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":21.5`)

	rec = get(t, w, "/api/devices/attic")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := get(t, testBackend(t, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, testBackend(t, []collector.Status{{Name: "a"}}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, testBackend(t, []collector.Status{{Name: "a"}, {Name: "b", Connected: true}}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"connected":1`))
}

func TestEmptyDeviceList(t *testing.T) {
	rec := get(t, testBackend(t, nil), "/api/devices")
	assert.Equal(t, "[]", rec.Body.String())
}
