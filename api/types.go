// Package api holds the native API message catalogue: wire tags, the push/reply
// classification used by the connection read loop and the protobuf payloads.
package api

import (
	"fmt"
)

// MessageType is the wire tag of a message. Values are part of the wire contract.
type MessageType uint32

const (
	HelloRequestType       MessageType = 1
	HelloResponseType      MessageType = 2
	ConnectRequestType     MessageType = 3
	ConnectResponseType    MessageType = 4
	DisconnectRequestType  MessageType = 5
	DisconnectResponseType MessageType = 6
	PingRequestType        MessageType = 7
	PingResponseType       MessageType = 8
	DeviceInfoRequestType  MessageType = 9
	DeviceInfoResponseType MessageType = 10

	ListEntitiesRequestType              MessageType = 11
	ListEntitiesBinarySensorResponseType MessageType = 12
	ListEntitiesCoverResponseType        MessageType = 13
	ListEntitiesFanResponseType          MessageType = 14
	ListEntitiesLightResponseType        MessageType = 15
	ListEntitiesSensorResponseType       MessageType = 16
	ListEntitiesSwitchResponseType       MessageType = 17
	ListEntitiesTextSensorResponseType   MessageType = 18
	ListEntitiesDoneResponseType         MessageType = 19
	SubscribeStatesRequestType           MessageType = 20
	BinarySensorStateResponseType        MessageType = 21
	CoverStateResponseType               MessageType = 22
	FanStateResponseType                 MessageType = 23
	LightStateResponseType               MessageType = 24
	SensorStateResponseType              MessageType = 25
	SwitchStateResponseType              MessageType = 26
	TextSensorStateResponseType          MessageType = 27
	GetTimeRequestType                   MessageType = 36
	GetTimeResponseType                  MessageType = 37
	ListEntitiesServicesResponseType     MessageType = 41
	ListEntitiesCameraResponseType       MessageType = 43
	ListEntitiesClimateResponseType      MessageType = 46
	ClimateStateResponseType             MessageType = 47
	ListEntitiesNumberResponseType       MessageType = 49
	NumberStateResponseType              MessageType = 50
	ListEntitiesSelectResponseType       MessageType = 52
	SelectStateResponseType              MessageType = 53
)

// Class says who originates a message and how the client treats it on receipt.
type Class int

const (
	// ClassRequest messages are sent by the client.
	ClassRequest Class = iota
	// ClassReply messages only arrive as an answer to a client request.
	ClassReply
	// ClassPush messages are initiated by the device and handled without caller involvement.
	ClassPush
)

func (c Class) String() string {
	switch c {
	case ClassRequest:
		return "request"
	case ClassReply:
		return "reply"
	case ClassPush:
		return "push"
	default:
		return "unknown"
	}
}

type registryEntry struct {
	name  string
	class Class
	// nil for messages the client never decodes
	factory func() Message
}

var registry = map[MessageType]registryEntry{
	HelloRequestType:       {"HelloRequest", ClassRequest, func() Message { return &HelloRequest{} }},
	HelloResponseType:      {"HelloResponse", ClassReply, func() Message { return &HelloResponse{} }},
	ConnectRequestType:     {"ConnectRequest", ClassRequest, func() Message { return &ConnectRequest{} }},
	ConnectResponseType:    {"ConnectResponse", ClassReply, func() Message { return &ConnectResponse{} }},
	DisconnectRequestType:  {"DisconnectRequest", ClassPush, func() Message { return &DisconnectRequest{} }},
	DisconnectResponseType: {"DisconnectResponse", ClassReply, func() Message { return &DisconnectResponse{} }},
	PingRequestType:        {"PingRequest", ClassPush, func() Message { return &PingRequest{} }},
	PingResponseType:       {"PingResponse", ClassReply, func() Message { return &PingResponse{} }},
	DeviceInfoRequestType:  {"DeviceInfoRequest", ClassRequest, func() Message { return &DeviceInfoRequest{} }},
	DeviceInfoResponseType: {"DeviceInfoResponse", ClassReply, func() Message { return &DeviceInfoResponse{} }},

	ListEntitiesRequestType:              {"ListEntitiesRequest", ClassRequest, func() Message { return &ListEntitiesRequest{} }},
	ListEntitiesBinarySensorResponseType: {"ListEntitiesBinarySensorResponse", ClassReply, listEntities(ListEntitiesBinarySensorResponseType)},
	ListEntitiesCoverResponseType:        {"ListEntitiesCoverResponse", ClassReply, listEntities(ListEntitiesCoverResponseType)},
	ListEntitiesFanResponseType:          {"ListEntitiesFanResponse", ClassReply, listEntities(ListEntitiesFanResponseType)},
	ListEntitiesLightResponseType:        {"ListEntitiesLightResponse", ClassReply, listEntities(ListEntitiesLightResponseType)},
	ListEntitiesSensorResponseType:       {"ListEntitiesSensorResponse", ClassReply, listEntities(ListEntitiesSensorResponseType)},
	ListEntitiesSwitchResponseType:       {"ListEntitiesSwitchResponse", ClassReply, listEntities(ListEntitiesSwitchResponseType)},
	ListEntitiesTextSensorResponseType:   {"ListEntitiesTextSensorResponse", ClassReply, listEntities(ListEntitiesTextSensorResponseType)},
	ListEntitiesServicesResponseType:     {"ListEntitiesServicesResponse", ClassReply, func() Message { return &ListEntitiesServicesResponse{} }},
	ListEntitiesCameraResponseType:       {"ListEntitiesCameraResponse", ClassReply, listEntities(ListEntitiesCameraResponseType)},
	ListEntitiesClimateResponseType:      {"ListEntitiesClimateResponse", ClassReply, listEntities(ListEntitiesClimateResponseType)},
	ListEntitiesNumberResponseType:       {"ListEntitiesNumberResponse", ClassReply, listEntities(ListEntitiesNumberResponseType)},
	ListEntitiesSelectResponseType:       {"ListEntitiesSelectResponse", ClassReply, listEntities(ListEntitiesSelectResponseType)},
	ListEntitiesDoneResponseType:         {"ListEntitiesDoneResponse", ClassReply, func() Message { return &ListEntitiesDoneResponse{} }},

	SubscribeStatesRequestType:    {"SubscribeStatesRequest", ClassRequest, func() Message { return &SubscribeStatesRequest{} }},
	BinarySensorStateResponseType: {"BinarySensorStateResponse", ClassPush, func() Message { return &BinarySensorStateResponse{} }},
	SensorStateResponseType:       {"SensorStateResponse", ClassPush, func() Message { return &SensorStateResponse{} }},
	TextSensorStateResponseType:   {"TextSensorStateResponse", ClassPush, func() Message { return &TextSensorStateResponse{} }},
	CoverStateResponseType:        {"CoverStateResponse", ClassPush, nil},
	FanStateResponseType:          {"FanStateResponse", ClassPush, nil},
	LightStateResponseType:        {"LightStateResponse", ClassPush, nil},
	SwitchStateResponseType:       {"SwitchStateResponse", ClassPush, nil},
	ClimateStateResponseType:      {"ClimateStateResponse", ClassPush, nil},
	NumberStateResponseType:       {"NumberStateResponse", ClassPush, nil},
	SelectStateResponseType:       {"SelectStateResponse", ClassPush, nil},

	GetTimeRequestType:  {"GetTimeRequest", ClassPush, func() Message { return &GetTimeRequest{} }},
	GetTimeResponseType: {"GetTimeResponse", ClassReply, func() Message { return &GetTimeResponse{} }},
}

func listEntities(t MessageType) func() Message {
	return func() Message { return &ListEntitiesResponse{Kind: t} }
}

// Lookup maps a raw wire tag to a known MessageType.
func Lookup(tag uint32) (MessageType, bool) {
	_, ok := registry[MessageType(tag)]
	return MessageType(tag), ok
}

func ClassOf(t MessageType) (Class, bool) {
	e, ok := registry[t]
	return e.class, ok
}

func (t MessageType) IsPush() bool {
	e, ok := registry[t]
	return ok && e.class == ClassPush
}

// New returns an empty message for t, or false if t is unknown or never decoded by the client.
func New(t MessageType) (Message, bool) {
	e, ok := registry[t]
	if !ok || e.factory == nil {
		return nil, false
	}
	return e.factory(), true
}

func (t MessageType) String() string {
	if e, ok := registry[t]; ok {
		return e.name
	}
	return fmt.Sprintf("MessageType(%d)", uint32(t))
}
