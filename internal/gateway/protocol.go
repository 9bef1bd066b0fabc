package gateway

import "encoding/json"

// ProtocolVersion is the admin socket protocol spoken by this server.
const ProtocolVersion = 1

// Frame types.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Server-pushed events.
const (
	EventConnectChallenge = "connect.challenge"
	// EventSettingsChanged carries the full saved record after any save.
	EventSettingsChanged = "settings.changed"
)

// Frame is the envelope for every admin socket message; Type selects which
// of the other fields are meaningful.
type Frame struct {
	Type string `json:"type"`

	// req
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// res
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	// event
	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

// ErrorShape is the error body of a failed response.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ConnectParams are the params of the first request on a socket.
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
}

// ClientInfo identifies an admin client, e.g. a settings page or the CLI.
type ClientInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// ConnectAuth carries credentials in the connect request.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK is the payload of a successful connect response.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
}

// ServerInfo identifies the server build and this connection.
type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	ConnID  string `json:"connId"`
}

// Features lists the RPC methods and events the server supports.
type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ServerPolicy holds limits the client must respect.
type ServerPolicy struct {
	MaxPayload int `json:"maxPayload"`
}

// NewRequest builds a request frame with JSON-encoded params.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// NewResponse builds a successful response frame for request id.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Payload: raw}, nil
}

// NewErrorResponse builds a failed response frame for request id.
func NewErrorResponse(id string, errShape ErrorShape) Frame {
	ok := false
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Error: &errShape}
}

// NewEvent builds a server-pushed event frame with sequence number seq.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}
