// Package widget renders the front-end embed for the chat widget: a global
// config object plus the loader script that mounts the vendor widget.
package widget

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/soyeahso/assistloop/internal/settings"
)

//go:embed static/loader.js
var loaderJS []byte

// ClientConfig is the shape of window.AssistLoopConfig read by loader.js.
type ClientConfig struct {
	AgentID   string `json:"agentId"`
	Position  string `json:"position"`
	WidgetURL string `json:"widgetUrl"`
}

// NewClientConfig converts a render-path record to the client shape.
func NewClientConfig(cfg settings.WidgetConfig) ClientConfig {
	return ClientConfig{
		AgentID:   cfg.AgentID,
		Position:  cfg.Position,
		WidgetURL: cfg.WidgetURL,
	}
}

var snippetTmpl = template.Must(template.New("snippet").Parse(
	`<script>window.AssistLoopConfig = {{.Config}};</script>
<script src="{{.LoaderURL}}" async></script>
`))

// Snippet renders the HTML to inject into a page. cfg should come from the
// render path. It returns an empty string when the widget is not visible on
// the page.
func Snippet(cfg settings.WidgetConfig, pageOptIn bool, loaderURL string) (template.HTML, error) {
	if !cfg.Visible(pageOptIn) {
		return "", nil
	}

	var buf bytes.Buffer
	err := snippetTmpl.Execute(&buf, struct {
		Config    ClientConfig
		LoaderURL string
	}{NewClientConfig(cfg), loaderURL})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// LoaderHandler serves the embedded loader script.
func LoaderHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(loaderJS)
	})
}
