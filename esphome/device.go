package esphome

import (
	"fmt"

	"github.com/XANi/esphome2prom/api"
	"github.com/XANi/esphome2prom/frame"
)

const (
	APIVersionMajor = 1
	APIVersionMinor = 3
)

type Phase int

const (
	PhaseConnected Phase = iota
	PhaseAuthenticated
	PhaseSubscribed
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseConnected:
		return "connected"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseSubscribed:
		return "subscribed"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// session is shared by the per-phase handles so a stale handle sees the current phase.
type session struct {
	conn  *Connection
	hello api.HelloResponse
	phase Phase
}

func (s *session) require(phases ...Phase) error {
	for _, p := range phases {
		if s.phase == p {
			return nil
		}
	}
	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}
	return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
}

func (s *session) requireAuthenticated() error {
	return s.require(PhaseAuthenticated, PhaseSubscribed)
}

// Device is a connected but not yet authenticated session.
type Device struct {
	s *session
}

// Connect performs the hello handshake. It can only succeed once per Connection.
func (c *Connection) Connect() (*Device, error) {
	if c.connected {
		return nil, fmt.Errorf("%w: hello already sent", ErrInvalidPhase)
	}
	var hello api.HelloResponse
	err := c.Request(&api.HelloRequest{
		ClientInfo:      c.clientInfo,
		APIVersionMajor: APIVersionMajor,
		APIVersionMinor: APIVersionMinor,
	}, &hello)
	if err != nil {
		return nil, err
	}
	c.connected = true
	c.log.Debugw("hello", "server", hello.ServerInfo, "name", hello.Name,
		"api", fmt.Sprintf("%d.%d", hello.APIVersionMajor, hello.APIVersionMinor))
	return &Device{s: &session{conn: c, hello: hello, phase: PhaseConnected}}, nil
}

func (d *Device) ServerInfo() string { return d.s.hello.ServerInfo }

// Name is the node name; empty on firmware that does not report it.
func (d *Device) Name() string { return d.s.hello.Name }

func (d *Device) APIVersion() (major, minor uint32) {
	return d.s.hello.APIVersionMajor, d.s.hello.APIVersionMinor
}

func (d *Device) Phase() Phase { return d.s.phase }

func (d *Device) Connection() *Connection { return d.s.conn }

// Authenticate sends the password. On ErrInvalidPassword the session stays
// in PhaseConnected.
func (d *Device) Authenticate(password string) (*AuthenticatedDevice, error) {
	if err := d.s.require(PhaseConnected); err != nil {
		return nil, err
	}
	var res api.ConnectResponse
	if err := d.s.conn.Request(&api.ConnectRequest{Password: password}, &res); err != nil {
		return nil, err
	}
	if res.InvalidPassword {
		return nil, ErrInvalidPassword
	}
	d.s.phase = PhaseAuthenticated
	return &AuthenticatedDevice{s: d.s}, nil
}

type AuthenticatedDevice struct {
	s *session
}

func (a *AuthenticatedDevice) ServerInfo() string { return a.s.hello.ServerInfo }

func (a *AuthenticatedDevice) Phase() Phase { return a.s.phase }

func (a *AuthenticatedDevice) Connection() *Connection { return a.s.conn }

func (a *AuthenticatedDevice) Ping() error {
	if err := a.s.requireAuthenticated(); err != nil {
		return err
	}
	return a.s.conn.Request(&api.PingRequest{}, &api.PingResponse{})
}

// GetTime returns the device clock in epoch seconds.
func (a *AuthenticatedDevice) GetTime() (uint32, error) {
	if err := a.s.requireAuthenticated(); err != nil {
		return 0, err
	}
	var res api.GetTimeResponse
	if err := a.s.conn.Request(&api.GetTimeRequest{}, &res); err != nil {
		return 0, err
	}
	return res.EpochSeconds, nil
}

type DeviceInfo struct {
	UsesPassword    bool   `json:"uses_password"`
	Name            string `json:"name"`
	MacAddress      string `json:"mac_address"`
	EsphomeVersion  string `json:"esphome_version"`
	CompilationTime string `json:"compilation_time"`
	Model           string `json:"model"`
	HasDeepSleep    bool   `json:"has_deep_sleep"`
	ProjectName     string `json:"project_name,omitempty"`
	ProjectVersion  string `json:"project_version,omitempty"`
	WebserverPort   uint32 `json:"webserver_port,omitempty"`
}

func (a *AuthenticatedDevice) DeviceInfo() (DeviceInfo, error) {
	if err := a.s.requireAuthenticated(); err != nil {
		return DeviceInfo{}, err
	}
	var res api.DeviceInfoResponse
	if err := a.s.conn.Request(&api.DeviceInfoRequest{}, &res); err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		UsesPassword:    res.UsesPassword,
		Name:            res.Name,
		MacAddress:      res.MacAddress,
		EsphomeVersion:  res.EsphomeVersion,
		CompilationTime: res.CompilationTime,
		Model:           res.Model,
		HasDeepSleep:    res.HasDeepSleep,
		ProjectName:     res.ProjectName,
		ProjectVersion:  res.ProjectVersion,
		WebserverPort:   res.WebserverPort,
	}, nil
}

// SubscribeStates asks the device to start pushing states. No reply is sent;
// pushes are handled by whichever call reads from the connection next.
func (a *AuthenticatedDevice) SubscribeStates() (*SubscribedDevice, error) {
	if err := a.s.require(PhaseAuthenticated); err != nil {
		return nil, err
	}
	if err := a.s.conn.Send(&api.SubscribeStatesRequest{}); err != nil {
		return nil, err
	}
	a.s.phase = PhaseSubscribed
	return &SubscribedDevice{AuthenticatedDevice: a}, nil
}

// Disconnect performs the graceful close handshake. The transport stays open
// and must be closed by the caller.
func (a *AuthenticatedDevice) Disconnect() error {
	if err := a.s.requireAuthenticated(); err != nil {
		return err
	}
	if err := a.s.conn.Request(&api.DisconnectRequest{}, &api.DisconnectResponse{}); err != nil {
		return err
	}
	a.s.phase = PhaseClosed
	return nil
}

func (a *AuthenticatedDevice) LastState(e Entity) (State, bool) {
	return a.s.conn.LastState(e.Key)
}

type SubscribedDevice struct {
	*AuthenticatedDevice
}

// Listen blocks until a frame that is not a push arrives, applying every
// state push before it. That frame's body is discarded and its header returned.
func (s *SubscribedDevice) Listen() (frame.Header, error) {
	if err := s.s.require(PhaseSubscribed); err != nil {
		return frame.Header{}, err
	}
	h, err := s.s.conn.NextHeader()
	if err != nil {
		return frame.Header{}, err
	}
	return h, s.s.conn.SkipBody(h)
}
