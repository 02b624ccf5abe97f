package api

type HelloRequest struct {
	ClientInfo      string
	APIVersionMajor uint32
	APIVersionMinor uint32
}

func (*HelloRequest) MessageType() MessageType { return HelloRequestType }

func (m *HelloRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ClientInfo)
	b = appendUint32(b, 2, m.APIVersionMajor)
	b = appendUint32(b, 3, m.APIVersionMinor)
	return b, nil
}

func (m *HelloRequest) Unmarshal(b []byte) error {
	*m = HelloRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.ClientInfo = d.string()
		case 2:
			m.APIVersionMajor = d.uint32()
		case 3:
			m.APIVersionMinor = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type HelloResponse struct {
	APIVersionMajor uint32
	APIVersionMinor uint32
	ServerInfo      string
	Name            string
}

func (*HelloResponse) MessageType() MessageType { return HelloResponseType }

func (m *HelloResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint32(b, 1, m.APIVersionMajor)
	b = appendUint32(b, 2, m.APIVersionMinor)
	b = appendString(b, 3, m.ServerInfo)
	b = appendString(b, 4, m.Name)
	return b, nil
}

func (m *HelloResponse) Unmarshal(b []byte) error {
	*m = HelloResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.APIVersionMajor = d.uint32()
		case 2:
			m.APIVersionMinor = d.uint32()
		case 3:
			m.ServerInfo = d.string()
		case 4:
			m.Name = d.string()
		default:
			d.skip()
		}
	}
	return d.err
}

type ConnectRequest struct {
	Password string
}

func (*ConnectRequest) MessageType() MessageType { return ConnectRequestType }

func (m *ConnectRequest) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.Password), nil
}

func (m *ConnectRequest) Unmarshal(b []byte) error {
	*m = ConnectRequest{}
	d := newDecoder(b)
	for d.next() {
		if d.num == 1 {
			m.Password = d.string()
		} else {
			d.skip()
		}
	}
	return d.err
}

type ConnectResponse struct {
	InvalidPassword bool
}

func (*ConnectResponse) MessageType() MessageType { return ConnectResponseType }

func (m *ConnectResponse) Marshal() ([]byte, error) {
	return appendBool(nil, 1, m.InvalidPassword), nil
}

func (m *ConnectResponse) Unmarshal(b []byte) error {
	*m = ConnectResponse{}
	d := newDecoder(b)
	for d.next() {
		if d.num == 1 {
			m.InvalidPassword = d.bool()
		} else {
			d.skip()
		}
	}
	return d.err
}

type DisconnectRequest struct{ empty }

func (*DisconnectRequest) MessageType() MessageType { return DisconnectRequestType }

type DisconnectResponse struct{ empty }

func (*DisconnectResponse) MessageType() MessageType { return DisconnectResponseType }

type PingRequest struct{ empty }

func (*PingRequest) MessageType() MessageType { return PingRequestType }

type PingResponse struct{ empty }

func (*PingResponse) MessageType() MessageType { return PingResponseType }

type DeviceInfoRequest struct{ empty }

func (*DeviceInfoRequest) MessageType() MessageType { return DeviceInfoRequestType }

type DeviceInfoResponse struct {
	UsesPassword    bool
	Name            string
	MacAddress      string
	EsphomeVersion  string
	CompilationTime string
	Model           string
	HasDeepSleep    bool
	ProjectName     string
	ProjectVersion  string
	WebserverPort   uint32
}

func (*DeviceInfoResponse) MessageType() MessageType { return DeviceInfoResponseType }

func (m *DeviceInfoResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendBool(b, 1, m.UsesPassword)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.MacAddress)
	b = appendString(b, 4, m.EsphomeVersion)
	b = appendString(b, 5, m.CompilationTime)
	b = appendString(b, 6, m.Model)
	b = appendBool(b, 7, m.HasDeepSleep)
	b = appendString(b, 8, m.ProjectName)
	b = appendString(b, 9, m.ProjectVersion)
	b = appendUint32(b, 10, m.WebserverPort)
	return b, nil
}

func (m *DeviceInfoResponse) Unmarshal(b []byte) error {
	*m = DeviceInfoResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.UsesPassword = d.bool()
		case 2:
			m.Name = d.string()
		case 3:
			m.MacAddress = d.string()
		case 4:
			m.EsphomeVersion = d.string()
		case 5:
			m.CompilationTime = d.string()
		case 6:
			m.Model = d.string()
		case 7:
			m.HasDeepSleep = d.bool()
		case 8:
			m.ProjectName = d.string()
		case 9:
			m.ProjectVersion = d.string()
		case 10:
			m.WebserverPort = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type GetTimeRequest struct{ empty }

func (*GetTimeRequest) MessageType() MessageType { return GetTimeRequestType }

type GetTimeResponse struct {
	EpochSeconds uint32
}

func (*GetTimeResponse) MessageType() MessageType { return GetTimeResponseType }

func (m *GetTimeResponse) Marshal() ([]byte, error) {
	return appendFixed32(nil, 1, m.EpochSeconds), nil
}

func (m *GetTimeResponse) Unmarshal(b []byte) error {
	*m = GetTimeResponse{}
	d := newDecoder(b)
	for d.next() {
		if d.num == 1 {
			m.EpochSeconds = d.fixed32()
		} else {
			d.skip()
		}
	}
	return d.err
}

type SubscribeStatesRequest struct{ empty }

func (*SubscribeStatesRequest) MessageType() MessageType { return SubscribeStatesRequestType }
