package repo

import (
	"context"
	"sync"

	"wta/internal/core/diff"
	perr "wta/internal/platform/errors"
	"wta/internal/services/api/diff/domain"
)

type memKey struct{ owner, id string }

// Memory is a process local domain.Store
type Memory struct {
	mu   sync.Mutex
	rows map[memKey]domain.Comparison
}

var _ domain.Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{rows: make(map[memKey]domain.Comparison)}
}

// UpsertSide sets side and bumps the version under the store lock
func (m *Memory) UpsertSide(_ context.Context, ownerID, id string, side domain.Side, payload string) (bool, error) {
	if !side.Valid() {
		return false, perr.InvalidArgf("unknown side %q", side)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memKey{ownerID, id}
	c, ok := m.rows[k]
	if !ok {
		c = domain.Comparison{OwnerID: ownerID, ID: id, Gen: newGen()}
	}
	p := payload
	if side == domain.SideLeft {
		c.Left = &p
	} else {
		c.Right = &p
	}
	c.Version++
	c.Result = nil
	m.rows[k] = c
	return !ok, nil
}

// Get returns a copy of the stored snapshot
func (m *Memory) Get(_ context.Context, ownerID, id string) (domain.Comparison, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[memKey{ownerID, id}]
	if !ok {
		return domain.Comparison{}, false, nil
	}
	return c.Clone(), true, nil
}

// UpdateResult stores r when the generation and version still match
func (m *Memory) UpdateResult(_ context.Context, c domain.Comparison, r diff.Result) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{c.OwnerID, c.ID}
	cur, ok := m.rows[k]
	if !ok || cur.Gen != c.Gen || cur.Version != c.Version {
		return false, nil
	}
	res := r.Clone()
	cur.Result = &res
	m.rows[k] = cur
	return true, nil
}

// Delete drops the record
func (m *Memory) Delete(_ context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{ownerID, id}
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

// Len reports how many comparisons are stored
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
