// Package collector keeps one native API session per device alive and feeds
// state pushes into a Sink.
package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/XANi/esphome2prom/esphome"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errDeviceDisconnected = errors.New("device closed the session")

type Sink interface {
	AddDevice(device string, entities []esphome.Entity)
	ProcessState(device string, key uint32, state esphome.State) error
}

type Config struct {
	Name     string
	Address  string
	Password string
	// PingInterval paces the read loop; state pushes are drained on every ping.
	PingInterval      time.Duration
	ReconnectInterval time.Duration
	Sink              Sink
	Logger            *zap.SugaredLogger
	Dial              func(ctx context.Context, network, address string) (net.Conn, error)
}

type EntityStatus struct {
	esphome.Entity
	State *esphome.State `json:"state,omitempty"`
}

type Status struct {
	Name       string              `json:"name"`
	Address    string              `json:"address"`
	Connected  bool                `json:"connected"`
	Session    string              `json:"session,omitempty"`
	ServerInfo string              `json:"server_info,omitempty"`
	Info       *esphome.DeviceInfo `json:"info,omitempty"`
	Entities   []EntityStatus      `json:"entities"`
	LastSeen   time.Time           `json:"last_seen"`
	LastError  string              `json:"last_error,omitempty"`
}

type Collector struct {
	cfg Config
	log *zap.SugaredLogger

	connected  bool
	session    string
	serverInfo string
	info       *esphome.DeviceInfo
	entities   []esphome.Entity
	states     map[uint32]esphome.State
	lastSeen   time.Time
	lastErr    error
	sync.RWMutex
}

func New(cfg *Config) (*Collector, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("device address is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	c := &Collector{cfg: *cfg}
	if c.cfg.Name == "" {
		c.cfg.Name = cfg.Address
	}
	if c.cfg.PingInterval <= 0 {
		c.cfg.PingInterval = time.Second * 10
	}
	if c.cfg.ReconnectInterval <= 0 {
		c.cfg.ReconnectInterval = time.Second * 30
	}
	if c.cfg.Logger == nil {
		c.cfg.Logger = zap.NewNop().Sugar()
	}
	if c.cfg.Dial == nil {
		d := &net.Dialer{Timeout: time.Second * 10}
		c.cfg.Dial = d.DialContext
	}
	c.log = c.cfg.Logger.With("device", c.cfg.Name)
	return c, nil
}

func (c *Collector) Name() string {
	return c.cfg.Name
}

// Run keeps a session up until ctx is cancelled. Failed sessions are retried
// after ReconnectInterval.
func (c *Collector) Run(ctx context.Context) error {
	for {
		err := c.runSession(ctx)
		if ctx.Err() != nil {
			if err != nil {
				c.log.Debugf("session closed on shutdown: %s", err)
			}
			return nil
		}
		c.Lock()
		c.lastErr = err
		c.Unlock()
		c.log.Warnf("session with %s ended: %s, reconnecting in %s", c.cfg.Address, err, c.cfg.ReconnectInterval)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.ReconnectInterval):
		}
	}
}

func (c *Collector) deadline(conn net.Conn) error {
	return conn.SetDeadline(time.Now().Add(3 * c.cfg.PingInterval))
}

func (c *Collector) runSession(ctx context.Context) (err error) {
	conn, err := c.cfg.Dial(ctx, "tcp", c.cfg.Address)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() {
		err = multierr.Append(err, conn.Close())
	}()
	session := uuid.NewString()
	log := c.log.With("session", session)

	ec := esphome.NewConnection(conn, conn, &esphome.Config{
		Logger: log.Named("api"),
		OnEvent: func(ev esphome.Event) {
			if ev.Type != esphome.EventStateUpdated {
				return
			}
			if err := c.cfg.Sink.ProcessState(c.cfg.Name, ev.Key, ev.State); err != nil {
				log.Warnf("%s", err)
			}
		},
	})
	if err := c.deadline(conn); err != nil {
		return err
	}
	dev, err := ec.Connect()
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	log.Infof("connected to %s", dev.ServerInfo())
	ad, err := dev.Authenticate(c.cfg.Password)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	info, err := ad.DeviceInfo()
	if err != nil {
		return fmt.Errorf("device info: %w", err)
	}
	entities, err := ad.ListEntities()
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}
	log.Infof("%s (%s, esphome %s) has %d entities", info.Name, info.Model, info.EsphomeVersion, len(entities))
	c.cfg.Sink.AddDevice(c.cfg.Name, entities)

	sub, err := ad.SubscribeStates()
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.Lock()
	c.connected = true
	c.session = session
	c.serverInfo = dev.ServerInfo()
	c.info = &info
	c.entities = entities
	c.states = map[uint32]esphome.State{}
	c.lastSeen = time.Now()
	c.lastErr = nil
	c.Unlock()
	defer func() {
		c.Lock()
		c.connected = false
		c.Unlock()
	}()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := conn.SetDeadline(time.Now().Add(time.Second)); err != nil {
				return err
			}
			return sub.Disconnect()
		case <-ticker.C:
			if err := c.deadline(conn); err != nil {
				return err
			}
			if err := sub.Ping(); err != nil {
				if ec.PeerDisconnected() && errors.Is(err, esphome.ErrUnexpectedTermination) {
					return errDeviceDisconnected
				}
				return fmt.Errorf("ping: %w", err)
			}
			c.Lock()
			c.states = ec.States()
			c.lastSeen = time.Now()
			c.Unlock()
			if ec.PeerDisconnected() {
				return errDeviceDisconnected
			}
		}
	}
}

// Status returns a copy safe to hand to other goroutines.
func (c *Collector) Status() Status {
	c.RLock()
	defer c.RUnlock()
	s := Status{
		Name:       c.cfg.Name,
		Address:    c.cfg.Address,
		Connected:  c.connected,
		Session:    c.session,
		ServerInfo: c.serverInfo,
		LastSeen:   c.lastSeen,
		Entities:   make([]EntityStatus, 0, len(c.entities)),
	}
	if c.info != nil {
		info := *c.info
		s.Info = &info
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	for _, e := range slices.Clone(c.entities) {
		es := EntityStatus{Entity: e}
		if st, ok := c.states[e.Key]; ok {
			es.State = &st
		}
		s.Entities = append(s.Entities, es)
	}
	return s
}
