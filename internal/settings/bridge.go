// Package settings maps the chat widget configuration onto five string keys
// of the configuration parameter store.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/soyeahso/assistloop/internal/observability"
	"github.com/soyeahso/assistloop/internal/store"
)

// WidgetConfig is the widget configuration record. It has no identity of its
// own and is rebuilt from the store on every read.
type WidgetConfig struct {
	AgentID        string `json:"agent_id"`
	Enabled        bool   `json:"enabled"`
	Position       string `json:"position"`
	WidgetURL      string `json:"widget_url"`
	ShowOnAllPages bool   `json:"show_on_all_pages"`
}

// Visible reports whether the widget should mount on a page. pageOptIn is
// the page's own setting, consulted only when ShowOnAllPages is off.
func (c WidgetConfig) Visible(pageOptIn bool) bool {
	if !c.Enabled || c.AgentID == "" {
		return false
	}
	return c.ShowOnAllPages || pageOptIn
}

// Data flattens the record for hook payloads.
func (c WidgetConfig) Data() map[string]any {
	return map[string]any{
		"agent_id":          c.AgentID,
		"enabled":           c.Enabled,
		"position":          c.Position,
		"widget_url":        c.WidgetURL,
		"show_on_all_pages": c.ShowOnAllPages,
	}
}

// ParseFlag is the read-side boolean coercion: only the exact string "True"
// is true. "true", "1" and "" are all false.
func ParseFlag(raw string) bool {
	return raw == FlagTrue
}

// FormatFlag is the write-side inverse of ParseFlag.
func FormatFlag(b bool) string {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// ErrRejected wraps the error of a settings_saving handler that vetoed a save.
var ErrRejected = errors.New("settings rejected")

// Bridge reads and writes WidgetConfig through a store.Store.
type Bridge struct {
	store   store.Store
	log     *logging.Logger
	hooks   *hooks.Manager
	metrics *observability.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHooks runs settings_saving before and emits settings_saved after each
// save.
func WithHooks(m *hooks.Manager) Option {
	return func(b *Bridge) { b.hooks = m }
}

// WithMetrics records reads and saves.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// NewBridge creates a Bridge over s.
func NewBridge(s store.Store, log *logging.Logger, opts ...Option) *Bridge {
	b := &Bridge{store: s, log: log.Sub("settings")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// defaults holds the per-path fallback for each key.
type defaults struct {
	agentID, enabled, position, widgetURL, showOnAllPages string
}

var (
	formDefaults = defaults{
		agentID:        "",
		enabled:        FlagFalse,
		position:       PositionRight,
		widgetURL:      "",
		showOnAllPages: FlagTrue,
	}
	renderDefaults = defaults{
		agentID:        "",
		enabled:        FlagFalse,
		position:       PositionRight,
		widgetURL:      DefaultWidgetURL,
		showOnAllPages: FlagTrue,
	}
)

// LoadFormValues returns the record as the admin form shows it. Unset keys
// take their defaults and widget_url stays empty when unset. It never fails;
// store errors are logged and the default is used.
func (b *Bridge) LoadFormValues(ctx context.Context) WidgetConfig {
	b.metrics.SettingsRead("form")
	return b.load(ctx, formDefaults, "form")
}

// LoadRenderConfig returns the record for the public embed path. It differs
// from LoadFormValues only in widget_url, which falls back to
// DefaultWidgetURL when unset or empty, so it is never empty.
func (b *Bridge) LoadRenderConfig(ctx context.Context) WidgetConfig {
	b.metrics.SettingsRead("render")
	cfg := b.load(ctx, renderDefaults, "render")
	if cfg.WidgetURL == "" {
		cfg.WidgetURL = DefaultWidgetURL
	}
	return cfg
}

func (b *Bridge) load(ctx context.Context, d defaults, path string) WidgetConfig {
	get := func(key, def string) string {
		v, err := store.Get(ctx, b.store, key, def)
		if err != nil {
			b.metrics.StoreError("read")
			b.log.Warn().Err(err).Str("key", key).Str("path", path).Msg("parameter read failed, using default")
		}
		return v
	}

	return WidgetConfig{
		AgentID:        get(KeyAgentID, d.agentID),
		Enabled:        ParseFlag(get(KeyEnabled, d.enabled)),
		Position:       get(KeyPosition, d.position),
		WidgetURL:      get(KeyWidgetURL, d.widgetURL),
		ShowOnAllPages: ParseFlag(get(KeyShowOnAllPages, d.showOnAllPages)),
	}
}

// Save writes every field of cfg, one key at a time. Booleans are stored as
// "True"/"False". An empty agent_id or widget_url unsets its key. There is no
// atomicity across keys: on a write error the keys already written stay
// written and the error is returned.
func (b *Bridge) Save(ctx context.Context, cfg WidgetConfig) error {
	if b.hooks != nil {
		if err := b.hooks.Run(ctx, hooks.EventSettingsSaving, cfg.Data()); err != nil {
			b.metrics.SettingsSaved("rejected")
			return fmt.Errorf("%w: %w", ErrRejected, err)
		}
	}

	writes := []struct {
		key   string
		value string
		unset bool
	}{
		{KeyAgentID, cfg.AgentID, cfg.AgentID == ""},
		{KeyEnabled, FormatFlag(cfg.Enabled), false},
		{KeyPosition, cfg.Position, false},
		{KeyWidgetURL, cfg.WidgetURL, cfg.WidgetURL == ""},
		{KeyShowOnAllPages, FormatFlag(cfg.ShowOnAllPages), false},
	}

	for _, w := range writes {
		var err error
		if w.unset {
			err = b.store.Delete(ctx, w.key)
		} else {
			err = b.store.Set(ctx, w.key, w.value)
		}
		if err != nil {
			b.metrics.StoreError("write")
			b.metrics.SettingsSaved("error")
			b.log.Error().Err(err).Str("key", w.key).Msg("parameter write failed")
			return fmt.Errorf("saving %s: %w", w.key, err)
		}
	}

	b.metrics.SettingsSaved("ok")
	b.log.Info().
		Str("agentId", cfg.AgentID).
		Bool("enabled", cfg.Enabled).
		Str("position", cfg.Position).
		Msg("widget settings saved")

	if b.hooks != nil {
		b.hooks.Emit(ctx, hooks.EventSettingsSaved, cfg.Data())
	}
	return nil
}

// Params returns the raw widget parameters as stored.
func (b *Bridge) Params(ctx context.Context) ([]store.Param, error) {
	return b.store.List(ctx, KeyPrefix)
}
