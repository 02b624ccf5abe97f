package esphome

import (
	"testing"

	"github.com/XANi/esphome2prom/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectHello(t *testing.T) {
	var p peer
	p.send(t, &api.HelloResponse{APIVersionMajor: 1, APIVersionMinor: 6, ServerInfo: "esphome v2022.3.0", Name: "garage"})
	c := p.conn(&Config{ClientInfo: "test-client"})

	d, err := c.Connect()
	require.NoError(t, err)
	assert.Equal(t, "esphome v2022.3.0", d.ServerInfo())
	assert.Equal(t, "garage", d.Name())
	major, minor := d.APIVersion()
	assert.Equal(t, uint32(1), major)
	assert.Equal(t, uint32(6), minor)
	assert.Equal(t, PhaseConnected, d.Phase())

	frames := p.sent(t)
	require.Len(t, frames, 1)
	var hello api.HelloRequest
	require.NoError(t, hello.Unmarshal(frames[0].Body))
	assert.Equal(t, "test-client", hello.ClientInfo)

	_, err = c.Connect()
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestAuthenticateInvalidPassword(t *testing.T) {
	var p peer
	p.send(t, &api.HelloResponse{ServerInfo: "x"}, &api.ConnectResponse{InvalidPassword: true})
	c := p.conn(nil)
	d, err := c.Connect()
	require.NoError(t, err)

	ad, err := d.Authenticate("wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Nil(t, ad)
	assert.Equal(t, PhaseConnected, d.Phase())

	frames := p.sent(t)
	require.Len(t, frames, 2)
	var req api.ConnectRequest
	require.NoError(t, req.Unmarshal(frames[1].Body))
	assert.Equal(t, "wrong", req.Password)

	// the connection is still usable for another attempt
	p.send(t, &api.ConnectResponse{})
	ad, err = d.Authenticate("right")
	require.NoError(t, err)
	assert.Equal(t, PhaseAuthenticated, ad.Phase())

	_, err = d.Authenticate("again")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestAuthenticatedRequests(t *testing.T) {
	var p peer
	_, ad := authenticated(t, &p, nil)

	p.send(t,
		&api.PingResponse{},
		&api.GetTimeResponse{EpochSeconds: 1650000000},
		&api.DeviceInfoResponse{
			UsesPassword:   true,
			Name:           "kitchen",
			MacAddress:     "24:0A:C4:00:00:01",
			EsphomeVersion: "2021.10.0",
			Model:          "nodemcu-32s",
		},
	)
	require.NoError(t, ad.Ping())

	ts, err := ad.GetTime()
	require.NoError(t, err)
	assert.Equal(t, uint32(1650000000), ts)

	info, err := ad.DeviceInfo()
	require.NoError(t, err)
	assert.Equal(t, DeviceInfo{
		UsesPassword:   true,
		Name:           "kitchen",
		MacAddress:     "24:0A:C4:00:00:01",
		EsphomeVersion: "2021.10.0",
		Model:          "nodemcu-32s",
	}, info)

	assert.Equal(t,
		[]api.MessageType{api.PingRequestType, api.GetTimeRequestType, api.DeviceInfoRequestType},
		p.sentTypes(t))
}

func TestSubscribeAndListen(t *testing.T) {
	var p peer
	c, ad := authenticated(t, &p, nil)

	sd, err := ad.SubscribeStates()
	require.NoError(t, err)
	assert.Equal(t, PhaseSubscribed, sd.Phase())
	// nothing was scripted, so any read would have failed with EOF
	assert.Equal(t, []api.MessageType{api.SubscribeStatesRequestType}, p.sentTypes(t))
	assert.NoError(t, c.Err())

	_, err = ad.SubscribeStates()
	assert.ErrorIs(t, err, ErrInvalidPhase)

	p.send(t,
		&api.SensorStateResponse{Key: 3, State: 21.5},
		&api.PingRequest{},
		&api.PingResponse{},
	)
	h, err := sd.Listen()
	require.NoError(t, err)
	assert.Equal(t, uint32(api.PingResponseType), h.Type)

	s, ok := sd.LastState(Entity{EntityInfo: EntityInfo{Key: 3}})
	require.True(t, ok)
	assert.Equal(t, Measurement(21.5), s)
	assert.NoError(t, c.Err())
}

func TestListenRequiresSubscription(t *testing.T) {
	var p peer
	_, ad := authenticated(t, &p, nil)
	sd := &SubscribedDevice{AuthenticatedDevice: ad}
	_, err := sd.Listen()
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestDisconnectClosesSession(t *testing.T) {
	var p peer
	_, ad := authenticated(t, &p, nil)

	p.send(t, &api.DisconnectResponse{})
	require.NoError(t, ad.Disconnect())
	assert.Equal(t, PhaseClosed, ad.Phase())

	assert.ErrorIs(t, ad.Ping(), ErrSessionClosed)
	_, err := ad.ListEntities()
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, ad.Disconnect(), ErrSessionClosed)
	assert.Equal(t, []api.MessageType{api.DisconnectRequestType}, p.sentTypes(t))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "authenticated", PhaseAuthenticated.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}
