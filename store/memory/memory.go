// Package memory provides an in-memory subsidy.PlanStore (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	providers   map[generic.ProviderID][]generic.FacilityID
	initiatives map[generic.InitiativeID]subsidy.WorkplaceInitiative
	plans       map[generic.PlanID]subsidy.ImprovementPlan
}

var _ subsidy.PlanStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		providers:   make(map[generic.ProviderID][]generic.FacilityID),
		initiatives: make(map[generic.InitiativeID]subsidy.WorkplaceInitiative),
		plans:       make(map[generic.PlanID]subsidy.ImprovementPlan),
	}
}

// AddProvider registers a provider and the facilities it owns.
func (m *Memory) AddProvider(id generic.ProviderID, facilities ...generic.FacilityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[id] = append(m.providers[id], facilities...)
}

// AddInitiatives stores catalog items, assigning IDs to those without one.
// The stored items are returned in input order.
func (m *Memory) AddInitiatives(items ...subsidy.WorkplaceInitiative) []subsidy.WorkplaceInitiative {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]subsidy.WorkplaceInitiative, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = generic.InitiativeID(generic.NewID())
		}
		m.initiatives[it.ID] = it
		out[i] = it
	}
	return out
}

func (m *Memory) ProviderExists(_ context.Context, id generic.ProviderID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.providers[id]
	return ok, nil
}

func (m *Memory) FacilityIDsOf(_ context.Context, id generic.ProviderID) ([]generic.FacilityID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.FacilityID(nil), m.providers[id]...), nil
}

func (m *Memory) InitiativesByID(_ context.Context, ids []generic.InitiativeID) ([]subsidy.WorkplaceInitiative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]subsidy.WorkplaceInitiative, 0, len(ids))
	for _, id := range ids {
		it, ok := m.initiatives[id]
		if !ok {
			return nil, generic.NotFound("initiative", string(id))
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *Memory) SavePlan(_ context.Context, p subsidy.ImprovementPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = clonePlan(p)
	return nil
}

// GetPlan returns nil, nil when the plan does not exist.
func (m *Memory) GetPlan(_ context.Context, id generic.PlanID) (*subsidy.ImprovementPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, nil
	}
	c := clonePlan(p)
	return &c, nil
}

// clonePlan copies slices and pointers so callers can't mutate stored state.
func clonePlan(p subsidy.ImprovementPlan) subsidy.ImprovementPlan {
	p.FacilityIDs = append([]generic.FacilityID(nil), p.FacilityIDs...)
	p.InitiativeIDs = append([]generic.InitiativeID(nil), p.InitiativeIDs...)
	if p.SubmittedAt != nil {
		t := *p.SubmittedAt
		p.SubmittedAt = &t
	}
	return p
}
