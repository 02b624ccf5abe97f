package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRegistryTags(t *testing.T) {
	// wire compatibility: tags must never move
	tags := map[MessageType]uint32{
		HelloRequestType:                     1,
		ConnectResponseType:                  4,
		PingRequestType:                      7,
		ListEntitiesDoneResponseType:         19,
		SubscribeStatesRequestType:           20,
		TextSensorStateResponseType:          27,
		GetTimeRequestType:                   36,
		GetTimeResponseType:                  37,
		ListEntitiesServicesResponseType:     41,
		ListEntitiesCameraResponseType:       43,
		ListEntitiesClimateResponseType:      46,
		ClimateStateResponseType:             47,
		ListEntitiesNumberResponseType:       49,
		NumberStateResponseType:              50,
		ListEntitiesSelectResponseType:       52,
		SelectStateResponseType:              53,
		ListEntitiesBinarySensorResponseType: 12,
	}
	for mt, tag := range tags {
		assert.Equal(t, tag, uint32(mt), mt.String())
		got, ok := Lookup(tag)
		assert.True(t, ok)
		assert.Equal(t, mt, got)
	}
	_, ok := Lookup(28)
	assert.False(t, ok)
	_, ok = Lookup(1000)
	assert.False(t, ok)
	assert.Equal(t, "MessageType(1000)", MessageType(1000).String())
}

func TestPushClassification(t *testing.T) {
	push := []MessageType{
		PingRequestType, DisconnectRequestType, GetTimeRequestType,
		BinarySensorStateResponseType, CoverStateResponseType, FanStateResponseType,
		LightStateResponseType, SensorStateResponseType, SwitchStateResponseType,
		TextSensorStateResponseType, ClimateStateResponseType, NumberStateResponseType,
		SelectStateResponseType,
	}
	for _, mt := range push {
		assert.True(t, mt.IsPush(), mt.String())
	}
	for _, mt := range []MessageType{PingResponseType, HelloResponseType, ListEntitiesDoneResponseType, ListEntitiesSensorResponseType} {
		assert.False(t, mt.IsPush(), mt.String())
		c, ok := ClassOf(mt)
		require.True(t, ok)
		assert.Equal(t, ClassReply, c)
	}
	assert.False(t, MessageType(999).IsPush())
}

func TestNewFactory(t *testing.T) {
	m, ok := New(ListEntitiesClimateResponseType)
	require.True(t, ok)
	assert.Equal(t, ListEntitiesClimateResponseType, m.MessageType())

	m, ok = New(SensorStateResponseType)
	require.True(t, ok)
	assert.IsType(t, &SensorStateResponse{}, m)

	_, ok = New(LightStateResponseType)
	assert.False(t, ok, "light state is never decoded")
	_, ok = New(MessageType(999))
	assert.False(t, ok)
}

func TestSensorStateDecodeFromRawFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 0xdeadbeef)
	b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(21.5))
	// unknown field from a newer firmware
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "ignored")

	var m SensorStateResponse
	require.NoError(t, m.Unmarshal(b))
	assert.Equal(t, uint32(0xdeadbeef), m.Key)
	assert.Equal(t, float32(21.5), m.State)
}

func TestListEntitiesSensorFields(t *testing.T) {
	in := &ListEntitiesResponse{
		Kind:              ListEntitiesSensorResponseType,
		ObjectID:          "outside_temperature",
		Key:               42,
		Name:              "Outside Temperature",
		UniqueID:          "abc123sensor",
		UnitOfMeasurement: "°C",
		AccuracyDecimals:  1,
		DeviceClass:       "temperature",
	}
	b, err := in.Marshal()
	require.NoError(t, err)

	out := &ListEntitiesResponse{Kind: ListEntitiesSensorResponseType}
	require.NoError(t, out.Unmarshal(b))
	assert.Equal(t, in, out)

	// the same bytes read as a cover keep only the shared fields
	cover := &ListEntitiesResponse{Kind: ListEntitiesCoverResponseType}
	require.NoError(t, cover.Unmarshal(b))
	assert.Equal(t, "outside_temperature", cover.ObjectID)
	assert.Equal(t, uint32(42), cover.Key)
	assert.Empty(t, cover.DeviceClass)
	assert.Empty(t, cover.UnitOfMeasurement)
}

func TestUnmarshalWrongWireType(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 5)
	var m GetTimeResponse
	assert.Error(t, m.Unmarshal(b))
}

func TestUnmarshalTruncated(t *testing.T) {
	var m HelloResponse
	// field 3 claims 10 bytes of string, only 2 present
	assert.Error(t, m.Unmarshal([]byte{0x1a, 0x0a, 'h', 'i'}))
}

func TestEmptyMessages(t *testing.T) {
	b, err := (&PingRequest{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.NoError(t, (&PingResponse{}).Unmarshal(nil))
	assert.NoError(t, (&ListEntitiesDoneResponse{}).Unmarshal([]byte{0x08, 0x01}))
}
