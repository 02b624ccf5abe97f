package esphome

import (
	"github.com/XANi/esphome2prom/api"
)

var listEntityKinds = map[api.MessageType]EntityKind{
	api.ListEntitiesBinarySensorResponseType: KindBinarySensor,
	api.ListEntitiesCameraResponseType:       KindCamera,
	api.ListEntitiesClimateResponseType:      KindClimate,
	api.ListEntitiesCoverResponseType:        KindCover,
	api.ListEntitiesFanResponseType:          KindFan,
	api.ListEntitiesLightResponseType:        KindLight,
	api.ListEntitiesNumberResponseType:       KindNumber,
	api.ListEntitiesSelectResponseType:       KindSelect,
	api.ListEntitiesSensorResponseType:       KindSensor,
	api.ListEntitiesSwitchResponseType:       KindSwitch,
	api.ListEntitiesTextSensorResponseType:   KindTextSensor,
}

func newEntity(kind EntityKind, m *api.ListEntitiesResponse) Entity {
	return Entity{
		EntityInfo: EntityInfo{Name: m.Name, Key: m.Key},
		Kind:       kind,
		Extended: &ExtendedInfo{
			ObjectID: m.ObjectID,
			UniqueID: m.UniqueID,
		},
		DeviceClass: m.DeviceClass,
		Unit:        m.UnitOfMeasurement,
	}
}

// ListEntities enumerates the device. The result is rebuilt on every call.
// Frames other than entity listings and the Done sentinel abort the listing
// with *UnexpectedResponseError.
func (a *AuthenticatedDevice) ListEntities() ([]Entity, error) {
	if err := a.s.requireAuthenticated(); err != nil {
		return nil, err
	}
	c := a.s.conn
	if err := c.Send(&api.ListEntitiesRequest{}); err != nil {
		return nil, err
	}
	entities := []Entity{}
	for {
		h, err := c.NextHeader()
		if err != nil {
			return nil, err
		}
		mt := api.MessageType(h.Type)
		switch mt {
		case api.ListEntitiesDoneResponseType:
			if err := c.ReadBody(h, &api.ListEntitiesDoneResponse{}); err != nil {
				return nil, err
			}
			c.log.Debugf("listed %d entities", len(entities))
			return entities, nil
		case api.ListEntitiesServicesResponseType:
			var m api.ListEntitiesServicesResponse
			if err := c.ReadBody(h, &m); err != nil {
				return nil, err
			}
			entities = append(entities, Entity{
				EntityInfo: EntityInfo{Name: m.Name, Key: m.Key},
				Kind:       KindServices,
			})
		default:
			kind, ok := listEntityKinds[mt]
			if !ok {
				if err := c.SkipBody(h); err != nil {
					return nil, err
				}
				return nil, &UnexpectedResponseError{Expected: api.ListEntitiesDoneResponseType, Received: api.MessageType(h.Type)}
			}
			m := api.ListEntitiesResponse{Kind: mt}
			if err := c.ReadBody(h, &m); err != nil {
				return nil, err
			}
			entities = append(entities, newEntity(kind, &m))
		}
	}
}
