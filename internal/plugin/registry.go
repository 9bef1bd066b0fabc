package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
)

// Registry holds plugins in registration order. All plugins share one hook
// manager, the same one handed to the settings bridge.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
	hooks   *hooks.Manager
	log     *logging.Logger
}

func NewRegistry(hm *hooks.Manager, log *logging.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		hooks:   hm,
		log:     log.Sub("plugins"),
	}
}

// Start registers the built-ins enabled in cfg on hm and initializes them.
// On failure every plugin already registered is closed again.
func Start(ctx context.Context, cfg config.PluginsConfig, hm *hooks.Manager, log *logging.Logger) (*Registry, error) {
	r := NewRegistry(hm, log)
	for _, p := range Builtins(cfg) {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	if err := r.InitAll(ctx); err != nil {
		r.CloseAll()
		return nil, err
	}
	return r, nil
}

// Register adds p without initializing it. IDs must be unique.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ID()
	if _, dup := r.plugins[id]; dup {
		return fmt.Errorf("plugin %q already registered", id)
	}
	r.plugins[id] = p
	r.order = append(r.order, id)
	r.log.Debug().Str("id", id).Str("version", p.Version()).Msg("plugin registered")
	return nil
}

// InitAll initializes plugins in registration order and stops at the first
// failure.
func (r *Registry) InitAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		api := API{Hooks: r.hooks, Log: r.log.Sub(id)}
		if err := r.plugins[id].Init(ctx, api); err != nil {
			return fmt.Errorf("init plugin %s: %w", id, err)
		}
		r.log.Info().Str("id", id).Msg("plugin initialized")
	}
	return nil
}

// CloseAll closes plugins in reverse registration order. Errors are logged.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		if err := r.plugins[id].Close(); err != nil {
			r.log.Warn().Err(err).Str("id", id).Msg("plugin close failed")
		}
	}
}

// Hooks returns the manager plugins register on.
func (r *Registry) Hooks() *hooks.Manager { return r.hooks }

// Info lists every plugin in registration order.
func (r *Registry) Info() []PluginInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PluginInfo, len(r.order))
	for i, id := range r.order {
		p := r.plugins[id]
		out[i] = PluginInfo{ID: id, Name: p.Name(), Version: p.Version()}
	}
	return out
}

type PluginInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}
