// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package secrets resolves sensitive configuration values by name.

It replaces the usual "global secrets manager" singleton with an explicit
[Provider] that is constructed once at startup and passed to every component
that needs it via constructor injection.

Backends:

  - Env: reads from OS environment variables.
  - Dir: reads from a directory of mounted secret files (one file per key),
    the layout used by Kubernetes and Docker secrets.
  - Chain: tries a list of providers in order, first hit wins.

No caching is performed here: backends are already cheap (env lookup, small
file read) and cache invalidation of rotated secrets is the operator's problem,
not the application's.
*/
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no backend can resolve the requested key.
var ErrNotFound = errors.New("secrets: key not found")

// Provider resolves a secret value by key.
type Provider interface {
	// Get returns the secret value for key, or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)
}

// Result carries the outcome of an asynchronous secret lookup.
type Result struct {
	Value string
	Err   error
}

// Lookup resolves a key asynchronously and delivers the outcome on the
// returned channel. The channel is buffered, so the caller may abandon it.
func Lookup(ctx context.Context, provider Provider, key string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		value, err := provider.Get(ctx, key)
		out <- Result{Value: value, Err: err}
	}()
	return out
}

// # Environment Backend

// Env resolves secrets from OS environment variables.
type Env struct{}

// NewEnv constructs an environment-variable backed [Provider].
func NewEnv() Env { return Env{} }

// Get implements [Provider].
func (Env) Get(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, key)
	}
	return value, nil
}

// # Mounted-File Backend

// Dir resolves secrets from a directory where each key is a file name.
type Dir struct {
	root string
}

// NewDir constructs a file-mount backed [Provider] rooted at root.
func NewDir(root string) Dir { return Dir{root: root} }

// Get implements [Provider]. Trailing whitespace is stripped because mounted
// secret files routinely end with a newline.
func (d Dir) Get(_ context.Context, key string) (string, error) {
	// Reject path traversal in keys outright.
	if key != filepath.Base(key) {
		return "", fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}

	data, err := os.ReadFile(filepath.Join(d.root, key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("secrets: failed to read %s: %w", key, err)
	}

	return strings.TrimRight(string(data), "\r\n "), nil
}

// # Chained Backends

// Chain tries each wrapped provider in order and returns the first hit.
type Chain struct {
	providers []Provider
}

// NewChain builds a [Provider] that falls through the given backends in order.
func NewChain(providers ...Provider) Chain {
	return Chain{providers: providers}
}

// Get implements [Provider].
func (c Chain) Get(ctx context.Context, key string) (string, error) {
	for _, provider := range c.providers {
		value, err := provider.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}
