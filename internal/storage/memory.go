package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

// MemoryStore is an in-memory implementation of Store. It backs tests and
// the MCP server's ephemeral mode, when no Redis URL is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]state.Document
	catalogs map[string]*catalog.Catalog
	pingErr  error
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]state.Document),
		catalogs: make(map[string]*catalog.Catalog),
	}
}

// SetPingError configures the store to fail on ping with the given error.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// SetCatalog registers a card database under a name.
func (m *MemoryStore) SetCatalog(name string, cat *catalog.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[name] = cat
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MemoryStore) Close() error {
	return nil
}

// SaveSession stores a deep copy, so later edits to doc do not leak into
// the stored session.
func (m *MemoryStore) SaveSession(ctx context.Context, id string, doc state.Document) error {
	if id == "" {
		return errors.New("session id cannot be empty")
	}
	if doc == nil {
		return errors.New("session document cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = state.Clone(doc)
	return nil
}

// LoadSession returns a deep copy of the stored session, or nil, nil when
// no session exists under id.
func (m *MemoryStore) LoadSession(ctx context.Context, id string) (state.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return state.Clone(doc), nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ListSessions(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) GetCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cat, ok := m.catalogs[name]
	if !ok {
		return nil, fmt.Errorf("catalog not found: %s", name)
	}
	return cat, nil
}

func (m *MemoryStore) ListCatalogs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.catalogs))
	for name := range m.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
