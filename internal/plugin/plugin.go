// Package plugin manages optional extensions that hook into settings saves.
package plugin

import (
	"context"

	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
)

// Plugin is an extension initialized once at startup.
type Plugin interface {
	// ID is a unique identifier, e.g. "validate".
	ID() string
	Name() string
	Version() string

	// Init registers hooks and sets up resources.
	Init(ctx context.Context, api API) error
	Close() error
}

// API is what a plugin may use during Init.
type API struct {
	Hooks *hooks.Manager
	Log   *logging.Logger
}
