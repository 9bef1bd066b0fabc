package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/assistloop/internal/logging"
)

const writeTimeout = 10 * time.Second

// Client is an authenticated admin socket.
type Client struct {
	ConnID      string
	Info        ClientInfo
	AuthMethod  string
	ConnectedAt time.Time

	socket *websocket.Conn
	mu     sync.Mutex // serializes writes
	closed bool
	log    *logging.Logger
}

// NewClient wraps an authenticated socket with a fresh connection id.
func NewClient(conn *websocket.Conn, info ClientInfo, auth AuthResult, log *logging.Logger) *Client {
	return &Client{
		ConnID:      uuid.New().String(),
		Info:        info,
		AuthMethod:  auth.Method,
		ConnectedAt: time.Now(),
		socket:      conn,
		log:         log,
	}
}

// Send writes one frame. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.socket.WriteJSON(frame)
}

// SendEvent sends a server-pushed event.
func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// Respond sends a successful response to request reqID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError sends a failed response to request reqID.
func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame blocks for the next frame. Only the read loop calls it.
func (c *Client) ReadFrame() (Frame, error) {
	_, msg, err := c.socket.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Close closes the socket. Calling it again is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.socket.Close()
}

// ClientRegistry tracks connected admin clients by connection id.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Add registers a connected client.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ConnID] = c
	r.log.Info().Str("connId", c.ConnID).Str("client", c.Info.ID).Msg("client connected")
}

// Remove unregisters a client. Unknown ids are ignored.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[connID]; !ok {
		return
	}
	delete(r.clients, connID)
	r.log.Info().Str("connId", connID).Msg("client disconnected")
}

// Get returns the client with connection id connID.
func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast encodes event once and sends it to every client. Clients whose
// send fails are closed and dropped. It returns the number reached.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) (int, error) {
	frame, err := NewEvent(event, payload, seq)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	targets := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.Send(frame); err != nil {
			r.log.Warn().Err(err).Str("connId", c.ConnID).Str("event", event).Msg("dropping client after failed send")
			c.Close()
			r.Remove(c.ConnID)
			continue
		}
		sent++
	}
	return sent, nil
}

// CloseAll closes and unregisters every client.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		delete(r.clients, id)
	}
}
