// Package web serves the scrape endpoint and a JSON view of device sessions.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/XANi/esphome2prom/collector"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	Logger     *zap.SugaredLogger
	ListenAddr string
	Version    string
	Debug      bool
	// Gatherer backs /metrics, defaults to prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
	Devices  func() []collector.Status
}

type WebBackend struct {
	l       *zap.SugaredLogger
	al      *zap.Logger
	r       *gin.Engine
	cfg     Config
	devices func() []collector.Status
}

func New(cfg Config) (backend *WebBackend, err error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("missing zap logger")
	}
	if len(cfg.ListenAddr) == 0 {
		return nil, fmt.Errorf("missing listen addr")
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	w := WebBackend{
		l:       cfg.Logger,
		al:      cfg.Logger.Desugar(),
		cfg:     cfg,
		devices: cfg.Devices,
	}
	if w.devices == nil {
		w.devices = func() []collector.Status { return nil }
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	w.r = r
	r.Use(ginzap.Ginzap(w.al, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(w.al, true))

	r.GET("/", w.Index)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", w.Health)
	r.GET("/api/devices", w.Devices)
	r.GET("/api/devices/:name", w.Device)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return &w, nil
}

func (b *WebBackend) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "esphome2prom",
		"version": b.cfg.Version,
		"metrics": "/metrics",
		"devices": "/api/devices",
	})
}

// Health reports 503 only when devices are configured and none is connected.
func (b *WebBackend) Health(c *gin.Context) {
	devices := b.devices()
	connected := 0
	for _, d := range devices {
		if d.Connected {
			connected++
		}
	}
	status := http.StatusOK
	if len(devices) > 0 && connected == 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"devices":   len(devices),
		"connected": connected,
	})
}

func (b *WebBackend) Devices(c *gin.Context) {
	devices := b.devices()
	if devices == nil {
		devices = []collector.Status{}
	}
	c.JSON(http.StatusOK, devices)
}

func (b *WebBackend) Device(c *gin.Context) {
	name := c.Param("name")
	for _, d := range b.devices() {
		if d.Name == name {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("device %s not found", name)})
}

func (b *WebBackend) Handler() http.Handler {
	return b.r
}

// Run serves until ctx is cancelled.
func (b *WebBackend) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              b.cfg.ListenAddr,
		Handler:           b.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			b.l.Warnf("error shutting down web server: %s", err)
		}
	}()
	b.l.Infof("listening on %s", b.cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
