// Package storage provides the string key-value engines that hold the session
// record and the collection list. Every write replaces the whole value.
package storage

import (
	"context"
	"strings"
)

// Engine is a namespaced key-value store with replace-the-whole-value writes.
type Engine interface {
	// Get returns the stored value. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Name() string
}

// Keys used by the application inside a namespace.
const (
	KeyUser        = "user"
	KeyCollections = "collections"
)

// Namespaced prefixes keys so several demo environments can share one backend.
type Namespaced struct {
	Engine
	prefix string
}

// WithNamespace wraps e so that every key becomes "<ns>:<key>".
func WithNamespace(e Engine, ns string) *Namespaced {
	ns = strings.TrimSuffix(ns, ":")
	p := ""
	if ns != "" {
		p = ns + ":"
	}
	return &Namespaced{Engine: e, prefix: p}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.Engine.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.Engine.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.Engine.Remove(ctx, n.prefix+key)
}

// Prefix returns the key prefix including the trailing colon.
func (n *Namespaced) Prefix() string { return n.prefix }
