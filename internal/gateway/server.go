package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/soyeahso/assistloop/internal/observability"
	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/soyeahso/assistloop/internal/version"
)

var ErrClientClosed = errors.New("client connection closed")

const (
	maxPayload       = 64 * 1024
	handshakeTimeout = 10 * time.Second
)

// Server is the assistloop gateway: public widget endpoints, the admin
// settings API, and the admin WebSocket.
type Server struct {
	cfg      config.Config
	auth     ResolvedAuth
	log      *logging.Logger
	bridge   *settings.Bridge
	clients  *ClientRegistry
	handlers map[string]RequestHandler
	version  string
	eventSeq atomic.Int64

	// optional
	hooks   *hooks.Manager
	metrics *observability.Metrics

	startedAt   time.Time
	httpServer  *http.Server
	upgrader    websocket.Upgrader
	authLimiter *authRateLimiter
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithHooks shares the hook manager used by the settings bridge. Saved
// settings are then broadcast to admin clients through the
// settings_saved event, and gateway start/stop are emitted.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithMetrics records HTTP metrics and serves /metrics when enabled in config.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a gateway server backed by bridge.
func New(cfg config.Config, bridge *settings.Bridge, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:         cfg,
		auth:        ResolveAuth(cfg.Gateway.Auth),
		log:         log.Sub("gateway"),
		bridge:      bridge,
		clients:     NewClientRegistry(log.Sub("clients")),
		handlers:    make(map[string]RequestHandler),
		version:     version.Version,
		authLimiter: newAuthRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Gateway.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.hooks != nil {
		s.hooks.On(hooks.EventSettingsSaved, "gateway.broadcast", s.onSettingsSaved)
	}

	s.registerRPCHandlers()
	return s
}

// checkWebSocketOrigin allows requests without an Origin header (non-browser
// clients) and browser requests whose Origin is in allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}

// Handle registers an RPC method handler.
func (s *Server) Handle(method string, handler RequestHandler) {
	s.handlers[method] = handler
}

// Methods returns the registered RPC method names, sorted.
func (s *Server) Methods() []string {
	methods := make([]string, 0, len(s.handlers))
	for m := range s.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Handler returns the complete HTTP handler: routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Gateway.AllowedOrigins, s.metrics)
}

func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Gateway)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Gateway.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Gateway.TLS.CertPath, s.cfg.Gateway.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Gateway.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled, admin credentials travel in cleartext")
	}

	s.startedAt = time.Now()
	go s.authLimiter.run(ctx)

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Gateway.Bind).
		Str("auth", s.auth.Mode).
		Bool("metrics", s.metricsEnabled()).
		Msg("gateway server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventGatewayStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventGatewayStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the configured listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

func (s *Server) metricsEnabled() bool {
	return s.cfg.Gateway.Metrics && s.metrics != nil
}

// onSettingsSaved pushes the saved record to every admin client.
func (s *Server) onSettingsSaved(_ context.Context, p hooks.Payload) error {
	s.broadcastSettings(p.Data)
	return nil
}

func (s *Server) broadcastSettings(data any) {
	seq := s.eventSeq.Add(1)
	n, err := s.clients.Broadcast(EventSettingsChanged, data, seq)
	if err != nil {
		s.log.Error().Err(err).Msg("encode settings event")
		return
	}
	s.log.Debug().Int64("seq", seq).Int("clients", n).Msg("settings change broadcast")
	s.metrics.SetAdminClients(s.clients.Count())
}

// saveSettings saves through the bridge and notifies admin clients. With a
// hook manager the notification rides on settings_saved instead.
func (s *Server) saveSettings(ctx context.Context, cfg settings.WidgetConfig) error {
	if err := s.bridge.Save(ctx, cfg); err != nil {
		return err
	}
	if s.hooks == nil {
		s.broadcastSettings(cfg.Data())
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authLimiter.allow(r.RemoteAddr) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rate limited after repeated auth failures")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxPayload)

	client, err := s.handshake(conn)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("handshake failed")
		s.authLimiter.recordFailure(r.RemoteAddr)
		conn.Close()
		return
	}

	s.clients.Add(client)
	s.metrics.SetAdminClients(s.clients.Count())
	defer func() {
		s.clients.Remove(client.ConnID)
		s.metrics.SetAdminClients(s.clients.Count())
		client.Close()
	}()

	s.readLoop(r.Context(), client)
}

// handshake runs challenge, connect, hello-ok.
func (s *Server) handshake(conn *websocket.Conn) (*Client, error) {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	challenge, err := NewEvent(EventConnectChallenge, map[string]any{
		"nonce": uuid.New().String(),
		"ts":    time.Now().UnixMilli(),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("creating challenge: %w", err)
	}
	if err := conn.WriteJSON(challenge); err != nil {
		return nil, fmt.Errorf("sending challenge: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading connect: %w", err)
	}

	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return nil, fmt.Errorf("parsing connect frame: %w", err)
	}
	if frame.Type != FrameTypeRequest || frame.Method != "connect" {
		sendErrorAndClose(conn, frame.ID, "protocol_error", "expected connect request")
		return nil, fmt.Errorf("expected connect request, got type=%s method=%s", frame.Type, frame.Method)
	}

	var params ConnectParams
	if err := json.Unmarshal(frame.Params, &params); err != nil {
		sendErrorAndClose(conn, frame.ID, "invalid_params", "invalid connect params")
		return nil, fmt.Errorf("parsing connect params: %w", err)
	}
	if params.MinProtocol > ProtocolVersion {
		sendErrorAndClose(conn, frame.ID, "protocol_error", "unsupported protocol version")
		return nil, fmt.Errorf("client requires protocol %d", params.MinProtocol)
	}

	authResult := Authorize(s.auth, params.Auth)
	if !authResult.OK {
		sendErrorAndClose(conn, frame.ID, "unauthorized", authResult.Reason)
		return nil, fmt.Errorf("auth failed: %s", authResult.Reason)
	}

	conn.SetReadDeadline(time.Time{})
	client := NewClient(conn, params.Client, authResult, s.log.Sub("ws"))

	resp, err := NewResponse(frame.ID, HelloOK{
		Protocol: ProtocolVersion,
		Server: ServerInfo{
			Version: s.version,
			Commit:  version.Commit,
			ConnID:  client.ConnID,
		},
		Features: Features{
			Methods: s.Methods(),
			Events:  []string{EventConnectChallenge, EventSettingsChanged},
		},
		Policy: ServerPolicy{MaxPayload: maxPayload},
	})
	if err != nil {
		return nil, fmt.Errorf("creating hello response: %w", err)
	}
	if err := client.Send(resp); err != nil {
		return nil, fmt.Errorf("sending hello: %w", err)
	}

	s.log.Info().
		Str("connId", client.ConnID).
		Str("clientId", params.Client.ID).
		Str("authMethod", authResult.Method).
		Msg("admin client authenticated")

	return client, nil
}

func (s *Server) readLoop(ctx context.Context, client *Client) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", client.ConnID).Msg("client closed connection")
			} else {
				s.log.Debug().Err(err).Str("connId", client.ConnID).Msg("read error")
			}
			return
		}

		if frame.Type != FrameTypeRequest {
			continue
		}
		s.dispatch(ctx, client, frame)
	}
}

func (s *Server) dispatch(ctx context.Context, client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Method]
	if !ok {
		client.RespondError(frame.ID, ErrorShape{
			Code:    "method_not_found",
			Message: "unknown method: " + frame.Method,
		})
		return
	}

	handler(&RequestContext{
		Ctx:    ctx,
		Client: client,
		Frame:  frame,
		Server: s,
	})
}

func sendErrorAndClose(conn *websocket.Conn, reqID, code, message string) {
	conn.WriteJSON(NewErrorResponse(reqID, ErrorShape{
		Code:    code,
		Message: message,
	}))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, message))
}
