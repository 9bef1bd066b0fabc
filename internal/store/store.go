// Package store holds the configuration parameter store: a flat,
// string-keyed mapping owned by the host platform, with sqlite, postgres and
// in-memory backends.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Param is a single key/value entry.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is the narrow interface the settings bridge depends on. Every
// operation is atomic per key; nothing is grouped across keys.
type Store interface {
	// Lookup returns the raw value for key and whether it is set.
	Lookup(ctx context.Context, key string) (string, bool, error)
	// Set upserts key.
	Set(ctx context.Context, key, value string) error
	// Delete unsets key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every entry whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Param, error)
}

// Get reads key and substitutes def when it is unset. On a backend error def
// is returned together with the error so callers can degrade and log.
func Get(ctx context.Context, s Store, key, def string) (string, error) {
	v, ok, err := s.Lookup(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// likePrefix escapes prefix for a LIKE pattern using '\' as the escape char.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
