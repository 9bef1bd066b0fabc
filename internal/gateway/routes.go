package gateway

import (
	"net/http"
	"time"

	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/soyeahso/assistloop/internal/widget"
)

func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// public, consumed by storefront pages
	mux.HandleFunc("GET /widget/config.json", s.handleWidgetConfig)
	mux.HandleFunc("GET /widget/snippet", s.handleWidgetSnippet)
	mux.Handle("GET "+loaderPath, widget.LoaderHandler())

	// admin
	mux.HandleFunc("GET /api/v1/settings", s.requireAdmin(s.handleSettingsGet))
	mux.HandleFunc("PUT /api/v1/settings", s.requireAdmin(s.handleSettingsPut))
	mux.HandleFunc("GET /api/v1/settings/schema", s.requireAdmin(s.handleSettingsSchema))
	mux.HandleFunc("GET /api/v1/params", s.requireAdmin(s.handleParams))
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	if s.metricsEnabled() {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("/", handleNotFound)
}

func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("settings.get", s.rpcSettingsGet)
	s.Handle("settings.set", s.rpcSettingsSet)
	s.Handle("settings.schema", s.rpcSettingsSchema)
	s.Handle("widget.config", s.rpcWidgetConfig)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.clients.Count(),
	}
	if !s.startedAt.IsZero() {
		resp.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}
	rc.Respond(resp)
}

type settingsGetParams struct {
	Render bool `json:"render,omitempty"`
}

func (s *Server) rpcSettingsGet(rc *RequestContext) {
	var p settingsGetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	if p.Render {
		rc.Respond(s.bridge.LoadRenderConfig(rc.Ctx))
		return
	}
	rc.Respond(s.bridge.LoadFormValues(rc.Ctx))
}

// rpcSettingsSet merges params over the current form values and saves.
func (s *Server) rpcSettingsSet(rc *RequestContext) {
	cfg := s.bridge.LoadFormValues(rc.Ctx)
	if err := rc.Params(&cfg); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}

	if err := s.saveSettings(rc.Ctx, cfg); err != nil {
		code := "store_error"
		status, msg := saveErrorStatus(err)
		if status == http.StatusUnprocessableEntity {
			code = "rejected"
		}
		rc.RespondError(code, msg)
		return
	}
	rc.Respond(s.bridge.LoadFormValues(rc.Ctx))
}

func (s *Server) rpcSettingsSchema(rc *RequestContext) {
	rc.Respond(SchemaResponse{Fields: settings.Fields, Positions: settings.Positions})
}

// WidgetConfigResponse is the widget.config result: the render record plus
// whether it mounts on a page that does not opt in.
type WidgetConfigResponse struct {
	Config  settings.WidgetConfig `json:"config"`
	Visible bool                  `json:"visible"`
}

func (s *Server) rpcWidgetConfig(rc *RequestContext) {
	cfg := s.bridge.LoadRenderConfig(rc.Ctx)
	rc.Respond(WidgetConfigResponse{Config: cfg, Visible: cfg.Visible(false)})
}
