package api

type ListEntitiesRequest struct{ empty }

func (*ListEntitiesRequest) MessageType() MessageType { return ListEntitiesRequestType }

type ListEntitiesDoneResponse struct{ empty }

func (*ListEntitiesDoneResponse) MessageType() MessageType { return ListEntitiesDoneResponseType }

// ListEntitiesResponse covers every ListEntities*Response except Services.
// All of them share object_id=1, key=2, name=3, unique_id=4; the remaining
// fields are only read for the kinds that define them.
type ListEntitiesResponse struct {
	Kind              MessageType
	ObjectID          string
	Key               uint32
	Name              string
	UniqueID          string
	Icon              string
	DeviceClass       string
	UnitOfMeasurement string
	AccuracyDecimals  int32
}

func (m *ListEntitiesResponse) MessageType() MessageType { return m.Kind }

func (m *ListEntitiesResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ObjectID)
	b = appendFixed32(b, 2, m.Key)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.UniqueID)
	switch m.Kind {
	case ListEntitiesBinarySensorResponseType:
		b = appendString(b, 5, m.DeviceClass)
	case ListEntitiesSensorResponseType:
		b = appendString(b, 5, m.Icon)
		b = appendString(b, 6, m.UnitOfMeasurement)
		b = appendInt32(b, 7, m.AccuracyDecimals)
		b = appendString(b, 9, m.DeviceClass)
	case ListEntitiesTextSensorResponseType:
		b = appendString(b, 5, m.Icon)
	}
	return b, nil
}

func (m *ListEntitiesResponse) Unmarshal(b []byte) error {
	*m = ListEntitiesResponse{Kind: m.Kind}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.ObjectID = d.string()
		case 2:
			m.Key = d.fixed32()
		case 3:
			m.Name = d.string()
		case 4:
			m.UniqueID = d.string()
		default:
			m.unmarshalKindField(d)
		}
	}
	return d.err
}

func (m *ListEntitiesResponse) unmarshalKindField(d *decoder) {
	switch {
	case m.Kind == ListEntitiesBinarySensorResponseType && d.num == 5:
		m.DeviceClass = d.string()
	case m.Kind == ListEntitiesSensorResponseType && d.num == 5:
		m.Icon = d.string()
	case m.Kind == ListEntitiesSensorResponseType && d.num == 6:
		m.UnitOfMeasurement = d.string()
	case m.Kind == ListEntitiesSensorResponseType && d.num == 7:
		m.AccuracyDecimals = d.int32()
	case m.Kind == ListEntitiesSensorResponseType && d.num == 9:
		m.DeviceClass = d.string()
	case m.Kind == ListEntitiesTextSensorResponseType && d.num == 5:
		m.Icon = d.string()
	default:
		d.skip()
	}
}

type ListEntitiesServicesResponse struct {
	Name string
	Key  uint32
}

func (*ListEntitiesServicesResponse) MessageType() MessageType {
	return ListEntitiesServicesResponseType
}

func (m *ListEntitiesServicesResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendFixed32(b, 2, m.Key)
	return b, nil
}

func (m *ListEntitiesServicesResponse) Unmarshal(b []byte) error {
	*m = ListEntitiesServicesResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Name = d.string()
		case 2:
			m.Key = d.fixed32()
		default:
			d.skip()
		}
	}
	return d.err
}

type BinarySensorStateResponse struct {
	Key          uint32
	State        bool
	MissingState bool
}

func (*BinarySensorStateResponse) MessageType() MessageType { return BinarySensorStateResponseType }

func (m *BinarySensorStateResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendFixed32(b, 1, m.Key)
	b = appendBool(b, 2, m.State)
	b = appendBool(b, 3, m.MissingState)
	return b, nil
}

func (m *BinarySensorStateResponse) Unmarshal(b []byte) error {
	*m = BinarySensorStateResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Key = d.fixed32()
		case 2:
			m.State = d.bool()
		case 3:
			m.MissingState = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

type SensorStateResponse struct {
	Key          uint32
	State        float32
	MissingState bool
}

func (*SensorStateResponse) MessageType() MessageType { return SensorStateResponseType }

func (m *SensorStateResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendFixed32(b, 1, m.Key)
	b = appendFloat(b, 2, m.State)
	b = appendBool(b, 3, m.MissingState)
	return b, nil
}

func (m *SensorStateResponse) Unmarshal(b []byte) error {
	*m = SensorStateResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Key = d.fixed32()
		case 2:
			m.State = d.float()
		case 3:
			m.MissingState = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

type TextSensorStateResponse struct {
	Key          uint32
	State        string
	MissingState bool
}

func (*TextSensorStateResponse) MessageType() MessageType { return TextSensorStateResponseType }

func (m *TextSensorStateResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendFixed32(b, 1, m.Key)
	b = appendString(b, 2, m.State)
	b = appendBool(b, 3, m.MissingState)
	return b, nil
}

func (m *TextSensorStateResponse) Unmarshal(b []byte) error {
	*m = TextSensorStateResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Key = d.fixed32()
		case 2:
			m.State = d.string()
		case 3:
			m.MissingState = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}
