// Package store provides in-memory implementations of the persistence
// interfaces, used by tests and dev mode.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/commission-engine/sales"
)

// =============================================================================
// MEMORY STORE - Implements SaleStore, ScheduleStore, PreferenceStore
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	sales       map[sales.SaleID]sales.Sale
	projects    map[sales.ProjectID]sales.Project
	levels      map[sales.ProjectID][]sales.CommissionLevel
	preferences map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		sales:       make(map[sales.SaleID]sales.Sale),
		projects:    make(map[sales.ProjectID]sales.Project),
		levels:      make(map[sales.ProjectID][]sales.CommissionLevel),
		preferences: make(map[string]string),
	}
}

// -----------------------------------------------------------------------------
// SaleStore
// -----------------------------------------------------------------------------

func (m *Memory) Add(_ context.Context, sale sales.Sale) (sales.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sale.ID == "" {
		sale.ID = sales.SaleID(uuid.NewString())
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *Memory) Get(_ context.Context, id sales.SaleID) (*sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sales[id]
	if !ok {
		return nil, sales.ErrSaleNotFound
	}
	return &s, nil
}

func (m *Memory) Update(_ context.Context, id sales.SaleID, update sales.SaleUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sales[id]
	if !ok {
		return sales.ErrSaleNotFound
	}
	update.Apply(&s)
	m.sales[id] = s
	return nil
}

func (m *Memory) Delete(_ context.Context, id sales.SaleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[id]; !ok {
		return sales.ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *Memory) ListAll(_ context.Context) ([]sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]sales.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// ReplaceSales swaps the full sale set (import path).
func (m *Memory) ReplaceSales(_ context.Context, replacement []sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[sales.SaleID]sales.Sale, len(replacement))
	for _, s := range replacement {
		if s.ID == "" {
			s.ID = sales.SaleID(uuid.NewString())
		}
		next[s.ID] = s
	}
	m.sales = next
	return nil
}

// -----------------------------------------------------------------------------
// ScheduleStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveProject(_ context.Context, p sales.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) GetProject(_ context.Context, id sales.ProjectID) (*sales.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, sales.ErrProjectNotFound
	}
	return &p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]sales.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]sales.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetCommissionLevels(_ context.Context, id sales.ProjectID) ([]sales.CommissionLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.projects[id]; !ok {
		return nil, sales.ErrProjectNotFound
	}
	out := make([]sales.CommissionLevel, len(m.levels[id]))
	copy(out, m.levels[id])
	return out, nil
}

func (m *Memory) SetCommissionLevels(_ context.Context, id sales.ProjectID, levels []sales.CommissionLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return sales.ErrProjectNotFound
	}
	stored := make([]sales.CommissionLevel, len(levels))
	copy(stored, levels)
	m.levels[id] = stored
	return nil
}

// -----------------------------------------------------------------------------
// PreferenceStore
// -----------------------------------------------------------------------------

func (m *Memory) GetPreference(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.preferences[key]
	if !ok {
		return "", sales.ErrPreferenceNotFound
	}
	return v, nil
}

func (m *Memory) SetPreference(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preferences[key] = value
	return nil
}
