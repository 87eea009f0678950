package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/leaddesk/internal/crm"
)

// Snapshot is the canonical lead and task data available to the UI.
type Snapshot struct {
	Leads               []crm.Lead
	LeadsTotal          int
	HasLeads            bool
	Todos               []crm.Todo
	TodosTotal          int
	HasTodos            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // reads that failed in a row
}

// IsOffline returns true when the API has been unreachable for multiple reads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Lead returns the lead with id.
func (s Snapshot) Lead(id int64) (crm.Lead, bool) {
	i := slices.IndexFunc(s.Leads, func(l crm.Lead) bool { return l.ID == id })
	if i < 0 {
		return crm.Lead{}, false
	}
	return s.Leads[i], true
}

// Todo returns the task with id.
func (s Snapshot) Todo(id int64) (crm.Todo, bool) {
	i := slices.IndexFunc(s.Todos, func(t crm.Todo) bool { return t.ID == id })
	if i < 0 {
		return crm.Todo{}, false
	}
	return s.Todos[i], true
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// SetClock replaces time.Now, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// UpdateLeads replaces the lead collection with one fetched page. When err is
// non-nil the previous data is kept but the error is recorded for visibility.
func (s *Store) UpdateLeads(leads []crm.Lead, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recordLocked(err) {
		return
	}
	s.snapshot.Leads = crm.CloneLeads(leads)
	s.snapshot.LeadsTotal = total
	s.snapshot.HasLeads = true
}

// UpdateTodos replaces the task collection and merges each task's embedded
// lead into the lead collection by id, appending leads not yet known. When err
// is non-nil the previous data is kept and the error recorded.
func (s *Store) UpdateTodos(todos []crm.Todo, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recordLocked(err) {
		return
	}
	s.snapshot.Todos = crm.CloneTodos(todos)
	s.snapshot.TodosTotal = total
	s.snapshot.HasTodos = true

	for _, t := range todos {
		if t.Lead == nil || t.Lead.ID == 0 {
			continue
		}
		i := slices.IndexFunc(s.snapshot.Leads, func(l crm.Lead) bool { return l.ID == t.Lead.ID })
		if i >= 0 {
			s.snapshot.Leads[i] = s.snapshot.Leads[i].Merge(*t.Lead)
			continue
		}
		s.snapshot.Leads = append(s.snapshot.Leads, t.Lead.Clone())
	}
}

// recordLocked stamps the update and tracks failures. It reports whether err
// was non-nil.
func (s *Store) recordLocked(err error) bool {
	s.snapshot.LastUpdated = s.clock()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return true
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	return false
}

// AddLead appends a lead acknowledged by the API.
func (s *Store) AddLead(l crm.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Leads = append(s.snapshot.Leads, l.Clone())
	s.snapshot.LeadsTotal++
}

// PatchLead applies p to the held lead with id and stamps UpdatedAt. It
// returns the patched lead, or false when the lead is not held.
func (s *Store) PatchLead(id int64, p crm.LeadPatch) (crm.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snapshot.Leads, func(l crm.Lead) bool { return l.ID == id })
	if i < 0 {
		return crm.Lead{}, false
	}
	patched := p.Apply(s.snapshot.Leads[i], s.clock())
	s.snapshot.Leads[i] = patched
	for j, t := range s.snapshot.Todos {
		if t.Lead != nil && t.Lead.ID == id {
			embedded := patched.Clone()
			s.snapshot.Todos[j].Lead = &embedded
		}
	}
	return patched.Clone(), true
}

// AddTodo appends a task acknowledged by the API.
func (s *Store) AddTodo(t crm.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Todos = append(s.snapshot.Todos, t.Clone())
	s.snapshot.TodosTotal++
}

// PatchTodo applies p to the held task with id and stamps UpdatedAt.
func (s *Store) PatchTodo(id int64, p crm.TodoPatch) (crm.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snapshot.Todos, func(t crm.Todo) bool { return t.ID == id })
	if i < 0 {
		return crm.Todo{}, false
	}
	patched := p.Apply(s.snapshot.Todos[i], s.clock())
	s.snapshot.Todos[i] = patched
	return patched.Clone(), true
}

// Lead returns a copy of the held lead with id.
func (s *Store) Lead(id int64) (crm.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.snapshot.Lead(id)
	return l.Clone(), ok
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Leads = crm.CloneLeads(s.snapshot.Leads)
	snap.Todos = crm.CloneTodos(s.snapshot.Todos)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
