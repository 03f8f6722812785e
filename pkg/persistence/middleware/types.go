// Package middleware wraps tree stores with extra behavior.
package middleware

import "github.com/aretw0/canopy/pkg/ports"

// Middleware allows wrapping a TreeStore to add behavior.
type Middleware func(ports.TreeStore) ports.TreeStore

// Chain wraps store so that the first middleware is the outermost.
func Chain(store ports.TreeStore, mws ...Middleware) ports.TreeStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
