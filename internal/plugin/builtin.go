package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/soyeahso/assistloop/internal/settings"
)

const builtinVersion = "1.0.0"

// Builtins returns the built-in plugins enabled in cfg.
func Builtins(cfg config.PluginsConfig) []Plugin {
	var out []Plugin
	if cfg.Validate {
		out = append(out, &Validator{})
	}
	if cfg.Audit {
		out = append(out, &Auditor{})
	}
	return out
}

// Validator rejects saves that the admin form would not produce: an unknown
// position, a widget URL that is not absolute http(s), or an enabled widget
// without an agent id.
type Validator struct{}

func (*Validator) ID() string      { return "validate" }
func (*Validator) Name() string    { return "Settings validation" }
func (*Validator) Version() string { return builtinVersion }
func (*Validator) Close() error    { return nil }

func (v *Validator) Init(_ context.Context, api API) error {
	api.Hooks.On(hooks.EventSettingsSaving, v.ID(), func(_ context.Context, p hooks.Payload) error {
		return ValidateSettings(p.Data)
	})
	return nil
}

// ValidateSettings checks a settings hook payload and joins every problem
// found into one error.
func ValidateSettings(data map[string]any) error {
	var errs []error

	position, _ := data["position"].(string)
	if !slices.ContainsFunc(settings.Positions, func(c settings.Choice) bool { return c.Value == position }) {
		errs = append(errs, fmt.Errorf("position must be %q or %q, got %q",
			settings.PositionRight, settings.PositionLeft, position))
	}

	if raw, _ := data["widget_url"].(string); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			errs = append(errs, fmt.Errorf("widget_url must be an absolute http(s) URL, got %q", raw))
		}
	}

	enabled, _ := data["enabled"].(bool)
	agentID, _ := data["agent_id"].(string)
	if enabled && agentID == "" {
		errs = append(errs, errors.New("agent_id is required when the widget is enabled"))
	}

	return errors.Join(errs...)
}

// Auditor logs every saved record.
type Auditor struct {
	log *logging.Logger
}

func (*Auditor) ID() string      { return "audit" }
func (*Auditor) Name() string    { return "Settings audit log" }
func (*Auditor) Version() string { return builtinVersion }
func (*Auditor) Close() error    { return nil }

func (a *Auditor) Init(_ context.Context, api API) error {
	a.log = api.Log
	api.Hooks.On(hooks.EventSettingsSaved, a.ID(), func(_ context.Context, p hooks.Payload) error {
		a.log.Info().Fields(p.Data).Msg("widget settings changed")
		return nil
	})
	return nil
}
