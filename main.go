package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/XANi/esphome2prom/collector"
	"github.com/XANi/esphome2prom/config"
	"github.com/XANi/esphome2prom/discovery"
	"github.com/XANi/esphome2prom/esphome"
	"github.com/XANi/esphome2prom/queue"
	"github.com/XANi/esphome2prom/web"
	"github.com/XANi/go-yamlcfg"
	"github.com/XANi/goneric"
	"github.com/efigence/go-mon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var version string
var log *zap.SugaredLogger
var debug = true

func init() {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	// naive systemd detection. Drop timestamp if running under it
	if os.Getenv("JOURNAL_STREAM") != "" {
		consoleEncoderConfig.TimeKey = ""
	}
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return (lvl < zapcore.ErrorLevel) != (lvl == zapcore.DebugLevel && !debug)
	})
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, os.Stderr, lowPriority),
		zapcore.NewCore(consoleEncoder, os.Stderr, highPriority),
	)
	logger := zap.New(core)
	if debug {
		logger = logger.WithOptions(
			zap.Development(),
			zap.AddCaller(),
			zap.AddStacktrace(highPriority),
		)
	} else {
		logger = logger.WithOptions(
			zap.AddCaller(),
		)
	}
	log = logger.Sugar()
}

func main() {
	defer log.Sync()
	// register internal stats
	mon.RegisterGcStats()
	app := &cli.Command{
		Name:        "esphome2prom",
		Description: "Export ESPHome sensors read over the native API as prometheus metrics",
		Version:     version,
		HideHelp:    true,
	}
	log.Infof("Starting %s version: %s", app.Name, version)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "help", Aliases: []string{"h"}, Usage: "show help"},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logs"},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"},
			Usage: "config file. Will be created if it does not exist",
		},
		&cli.StringFlag{
			Name:  "listen-addr",
			Value: "127.0.0.1:3001",
			Usage: "Listen addr",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("LISTEN_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "mqtt-addr",
			Usage: "mqtt broker address, metrics are also published there if set",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MQTT_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "mqtt-topic-prefix",
			Value: "esphome2prom",
			Usage: "topic prefix for published metrics",
		},
		&cli.StringFlag{
			Name:  "pprof-addr",
			Value: "",
			Usage: "address to run pprof on, disabled by default",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Value: "esphome_",
			Usage: "prefix for metrics name",
		},
		&cli.StringMapFlag{
			Name: "extra-labels",
			Value: map[string]string{
				"host": goneric.Must(os.Hostname()),
			},
			Usage: "comma separated key=value pairs of additional prometheus labels",
		},
		&cli.StringSliceFlag{
			Name:  "device",
			Usage: "device to poll, name=host:port or host:port. Can be repeated",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ESPHOME_DEVICES"),
			),
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "API password for devices given with --device",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ESPHOME_PASSWORD"),
			),
		},
		&cli.DurationFlag{
			Name:  "ping-interval",
			Value: time.Second * 10,
			Usage: "how often devices are pinged and state pushes drained",
		},
		&cli.DurationFlag{
			Name:  "reconnect-interval",
			Value: time.Second * 30,
			Usage: "delay before reconnecting a failed session",
		},
	}
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Bool("help") {
			cli.ShowAppHelp(c)
			os.Exit(1)
		}
		cfg := config.Config{
			ListenAddress:     c.String("listen-addr"),
			MQTTAddress:       c.String("mqtt-addr"),
			MQTTTopicPrefix:   c.String("mqtt-topic-prefix"),
			PrometheusPrefix:  c.String("prefix"),
			Debug:             c.Bool("debug"),
			PProfAddress:      c.String("pprof-addr"),
			ExtraLabels:       c.StringMap("extra-labels"),
			PingInterval:      c.Duration("ping-interval"),
			ReconnectInterval: c.Duration("reconnect-interval"),
		}
		if c.String("config") != "" {
			err := yamlcfg.LoadConfig([]string{c.String("config")}, &cfg)
			if err != nil {
				log.Fatal(err)
			}
		}
		for _, d := range c.StringSlice("device") {
			cfg.Devices = append(cfg.Devices, parseDeviceFlag(d, c.String("password")))
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if len(cfg.Devices) == 0 {
			return fmt.Errorf("no devices configured, use --device or the config file")
		}
		debug = cfg.Debug
		log.Debug("debug enabled")
		return run(ctx, &cfg)
	}
	app.Commands = []*cli.Command{
		{
			Name:  "discover",
			Usage: "list devices advertising the native API over mDNS",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "timeout", Value: discovery.DefaultScanTimeout},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				s := discovery.NewScanner()
				s.Timeout = c.Duration("timeout")
				devices, err := s.Scan(ctx)
				if err != nil {
					return err
				}
				for _, d := range devices {
					fmt.Printf("%s\t%s\t%s\n", d.Name, d.Address(), d.Metadata["version"])
				}
				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "connect to one device and print its info, entities and states",
			ArgsUsage: "host:port",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "password"},
				&cli.DurationFlag{Name: "wait", Value: time.Second * 2, Usage: "how long to collect state pushes"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				addr := c.Args().First()
				if addr == "" {
					return fmt.Errorf("device address required")
				}
				return printInfo(ctx, addr, c.String("password"), c.Duration("wait"))
			},
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func parseDeviceFlag(s string, password string) config.DeviceConfig {
	name, addr, ok := strings.Cut(s, "=")
	if !ok {
		addr, name = name, ""
	}
	return config.DeviceConfig{Name: name, Address: addr, Password: password}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	q, err := queue.New(&queue.Config{
		MQTTAddr:    cfg.MQTTAddress,
		TopicPrefix: cfg.MQTTTopicPrefix,
		Logger:      log.Named("mq"),
		ExtraLabels: cfg.ExtraLabels,
		Prefix:      cfg.PrometheusPrefix,
		Registerer:  registry,
	})
	if err != nil {
		log.Panicf("error starting queue: %s", err)
	}
	defer q.Close()

	var devices []*collector.Collector
	for _, d := range cfg.Devices {
		col, err := collector.New(&collector.Config{
			Name:              d.Name,
			Address:           d.Address,
			Password:          d.Password,
			PingInterval:      cfg.PingInterval,
			ReconnectInterval: cfg.ReconnectInterval,
			Sink:              q,
			Logger:            log.Named("collector"),
		})
		if err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
		devices = append(devices, col)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, col := range devices {
		g.Go(func() error {
			return col.Run(gctx)
		})
	}
	if len(cfg.ListenAddress) > 0 {
		w, err := web.New(web.Config{
			Logger:     log.Named("web"),
			ListenAddr: cfg.ListenAddress,
			Version:    version,
			Debug:      cfg.Debug,
			Gatherer:   registry,
			Devices: func() []collector.Status {
				out := make([]collector.Status, 0, len(devices))
				for _, col := range devices {
					out = append(out, col.Status())
				}
				return out
			},
		})
		if err != nil {
			log.Panicf("error starting web listener: %s", err)
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	if len(cfg.PProfAddress) > 0 {
		log.Infof("listening pprof on %s", cfg.PProfAddress)
		go func() {
			log.Errorf("failed to start debug listener: %s (ignoring)", http.ListenAndServe(cfg.PProfAddress, nil))
		}()
	}
	return g.Wait()
}

type deviceReport struct {
	Server   string                   `json:"server"`
	Info     esphome.DeviceInfo       `json:"info"`
	Entities []collector.EntityStatus `json:"entities"`
}

func printInfo(ctx context.Context, addr string, password string, wait time.Duration) error {
	d := net.Dialer{Timeout: time.Second * 10}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(wait + time.Second*10))
	ec := esphome.NewConnection(conn, conn, &esphome.Config{Logger: log.Named("api")})
	dev, err := ec.Connect()
	if err != nil {
		return err
	}
	ad, err := dev.Authenticate(password)
	if err != nil {
		return err
	}
	info, err := ad.DeviceInfo()
	if err != nil {
		return err
	}
	entities, err := ad.ListEntities()
	if err != nil {
		return err
	}
	sub, err := ad.SubscribeStates()
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}
	// pushes that arrived while waiting are consumed by the ping exchange
	if err := sub.Ping(); err != nil {
		return err
	}
	report := deviceReport{Server: dev.ServerInfo(), Info: info}
	for _, e := range entities {
		es := collector.EntityStatus{Entity: e}
		if st, ok := sub.LastState(e); ok {
			es.State = &st
		}
		report.Entities = append(report.Entities, es)
	}
	out, err := json.MarshalIndent(&report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return sub.Disconnect()
}
