// Package store provides AttributeStore implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/value-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	attributes map[string]generic.Attribute
	records    map[string][]generic.Record
	users      map[string]generic.DirectoryUser // by lower-case email
}

var _ generic.AttributeStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		attributes: make(map[string]generic.Attribute),
		records:    make(map[string][]generic.Record),
		users:      make(map[string]generic.DirectoryUser),
	}
}

func (m *Memory) SaveAttribute(_ context.Context, a generic.Attribute) (generic.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	for _, other := range m.attributes {
		if other.ID != a.ID && other.Name == a.Name {
			return generic.Attribute{}, generic.ErrDuplicateAttribute
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.attributes[a.ID] = a
	return a, nil
}

func (m *Memory) GetAttribute(_ context.Context, id string) (*generic.Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.attributes[id]
	if !ok {
		return nil, generic.ErrAttributeNotFound
	}
	return &a, nil
}

func (m *Memory) ListAttributes(_ context.Context) ([]generic.Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Attribute, 0, len(m.attributes))
	for _, a := range m.attributes {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) AppendRecord(_ context.Context, r generic.Record) (generic.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attributes[r.AttributeID]; !ok {
		return generic.Record{}, generic.ErrAttributeNotFound
	}
	if r.ID == "" {
		r.ID = uuid.Must(uuid.NewV7()).String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.records[r.AttributeID] = append(m.records[r.AttributeID], r)
	return r, nil
}

func (m *Memory) ListRecords(_ context.Context, attributeID string) ([]generic.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Record, len(m.records[attributeID]))
	copy(result, m.records[attributeID])
	return result, nil
}

func (m *Memory) SaveUser(_ context.Context, u generic.DirectoryUser) (generic.DirectoryUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(u.Email))
	if existing, ok := m.users[key]; ok {
		u.ID = existing.ID
	}
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV7()).String()
	}
	m.users[key] = u
	return u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]generic.DirectoryUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.DirectoryUser, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}
