package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/soyeahso/assistloop/internal/widget"
)

const (
	loaderPath      = "/widget/loader.js"
	maxSettingsBody = 16 * 1024
)

// HealthResponse is the health payload. The public endpoint fills only
// Status; the authenticated RPC fills the rest.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Clients int    `json:"clients,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SchemaResponse describes the admin form.
type SchemaResponse struct {
	Fields    []settings.Field  `json:"fields"`
	Positions []settings.Choice `json:"positions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

// handleWidgetConfig serves the render-path record the page embed uses.
func (s *Server) handleWidgetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, s.bridge.LoadRenderConfig(r.Context()))
}

// handleWidgetSnippet serves the HTML to inject into a page. ?page=1 marks
// the page as opted in when the widget is not shown on all pages.
func (s *Server) handleWidgetSnippet(w http.ResponseWriter, r *http.Request) {
	pageOptIn, _ := strconv.ParseBool(r.URL.Query().Get("page"))

	html, err := widget.Snippet(s.bridge.LoadRenderConfig(r.Context()), pageOptIn, s.loaderURL(r))
	if err != nil {
		s.log.Error().Err(err).Msg("rendering widget snippet")
		writeError(w, http.StatusInternalServerError, "snippet render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(html))
}

// loaderURL is the absolute loader address for a snippet embedded on another
// host. It is built from gateway.publicURL, or from the request when unset.
func (s *Server) loaderURL(r *http.Request) string {
	if base := s.cfg.Gateway.PublicURL; base != "" {
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			return u.JoinPath(loaderPath).String()
		}
		s.log.Warn().Str("publicURL", base).Msg("ignoring invalid public url")
	}
	u := url.URL{Scheme: "http", Host: r.Host, Path: loaderPath}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	return u.String()
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	if render, _ := strconv.ParseBool(r.URL.Query().Get("render")); render {
		writeJSON(w, http.StatusOK, s.bridge.LoadRenderConfig(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, s.bridge.LoadFormValues(r.Context()))
}

// handleSettingsPut saves the body over the current form values, so fields
// missing from the body keep their stored value.
func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	cfg := s.bridge.LoadFormValues(r.Context())

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings body: "+err.Error())
		return
	}

	if err := s.saveSettings(r.Context(), cfg); err != nil {
		status, msg := saveErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, s.bridge.LoadFormValues(r.Context()))
}

func (s *Server) handleSettingsSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{
		Fields:    settings.Fields,
		Positions: settings.Positions,
	})
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.bridge.Params(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing parameters")
		writeError(w, http.StatusInternalServerError, "listing parameters failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"params": params})
}

// saveErrorStatus maps a save failure to an HTTP status and client message.
func saveErrorStatus(err error) (int, string) {
	if errors.Is(err, settings.ErrRejected) {
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "saving settings failed"
}

// RequestHandler handles one RPC request.
type RequestHandler func(rc *RequestContext)

// RequestContext carries everything an RPC handler needs.
type RequestContext struct {
	Ctx    context.Context
	Client *Client
	Frame  Frame
	Server *Server
}

func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

func (rc *RequestContext) RespondError(code, message string) {
	rc.Client.RespondError(rc.Frame.ID, ErrorShape{
		Code:    code,
		Message: message,
	})
}

// Params decodes the request params into target. Absent params leave
// target untouched.
func (rc *RequestContext) Params(target any) error {
	if len(rc.Frame.Params) == 0 || string(rc.Frame.Params) == "null" {
		return nil
	}
	return json.Unmarshal(rc.Frame.Params, target)
}
