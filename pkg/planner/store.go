package planner

import (
	"sort"
	"sync"
)

// Store is the in-memory plan registry. Plans live here from creation until
// explicit deletion; nothing is persisted across process restarts.
type Store struct {
	mu    sync.RWMutex
	plans map[string]*Plan
	order []string // insertion order, used as the tie-breaker when listing
}

// NewStore creates an empty plan store
func NewStore() *Store {
	return &Store{
		plans: make(map[string]*Plan),
	}
}

// Put adds a plan to the store
func (s *Store) Put(plan *Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.ID]; !exists {
		s.order = append(s.order, plan.ID)
	}
	s.plans[plan.ID] = plan
}

// Get returns the stored plan, live, not a copy
func (s *Store) Get(id string) (*Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	return plan, ok
}

// Remove deletes a plan by id and reports whether it was present
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[id]; !ok {
		return false
	}
	delete(s.plans, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all stored plans ordered by creation time, most recent first.
// Plans created at the same instant keep their insertion order.
func (s *Store) List() []*Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]*Plan, 0, len(s.plans))
	for _, id := range s.order {
		plans = append(plans, s.plans[id])
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans
}

// Len returns the number of stored plans
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.plans)
}
