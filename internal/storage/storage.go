package storage

import (
	"context"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

// Store defines a unified interface for all storage operations.
// It combines session persistence (Redis) with card database loading
// (filesystem): sessions change on every mutation, catalogs are static
// reference data shipped alongside the binary.
type Store interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (Redis-backed)
	SaveSession(ctx context.Context, id string, doc state.Document) error
	// LoadSession returns nil, nil when no session exists under id.
	LoadSession(ctx context.Context, id string) (state.Document, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]string, error)

	// Catalog operations (filesystem-backed)
	GetCatalog(ctx context.Context, name string) (*catalog.Catalog, error)
	ListCatalogs(ctx context.Context) ([]string, error)
}
