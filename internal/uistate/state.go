// Package uistate keeps per-section list state (page, sort, search, filters,
// active tab) and mirrors it to the durable key-value store so it survives a
// restart.
//
// Each section owns the key "<section>_state". Sections never share or merge
// state. Every mutation rewrites the durable copy with a fresh LastUpdated;
// ResetState and ClearAll delete it instead and mark the state as manually
// cleared, so the next hydration starts from the defaults.
package uistate

import (
	"slices"

	"github.com/five82/leaddesk/internal/filter"
)

// SchemaVersion is written with every persisted state. Stored states with a
// newer version are ignored rather than misread.
const SchemaVersion = 1

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// State is the persisted view state of one section.
type State struct {
	Version           int             `json:"version"`
	Filters           []filter.Option `json:"filters"`
	CurrentPage       int             `json:"currentPage"`
	SortField         string          `json:"sortField,omitempty"`
	SortDirection     string          `json:"sortDirection,omitempty"`
	SearchQuery       string          `json:"searchQuery"`
	ActiveTab         string          `json:"activeTab,omitempty"`
	LastUpdated       int64           `json:"lastUpdated"` // unix milliseconds
	IsManuallyCleared bool            `json:"isManuallyCleared"`
}

// Defaults returns the state a section starts from.
func Defaults() State {
	return State{
		Version:       SchemaVersion,
		Filters:       []filter.Option{},
		CurrentPage:   1,
		SortField:     "created_at",
		SortDirection: SortDesc,
		SearchQuery:   "",
		ActiveTab:     "today",
	}
}

func (s State) clone() State {
	s.Filters = slices.Clone(s.Filters)
	if s.Filters == nil {
		s.Filters = []filter.Option{}
	}
	return s
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Filters       *[]filter.Option
	CurrentPage   *int
	SortField     *string
	SortDirection *string
	SearchQuery   *string
	ActiveTab     *string
}

func (p Patch) apply(s State) State {
	if p.Filters != nil {
		s.Filters = slices.Clone(*p.Filters)
	}
	if p.CurrentPage != nil {
		s.CurrentPage = *p.CurrentPage
	}
	if p.SortField != nil {
		s.SortField = *p.SortField
	}
	if p.SortDirection != nil {
		s.SortDirection = *p.SortDirection
	}
	if p.SearchQuery != nil {
		s.SearchQuery = *p.SearchQuery
	}
	if p.ActiveTab != nil {
		s.ActiveTab = *p.ActiveTab
	}
	return s
}

// Page moves to page n.
func Page(n int) Patch { return Patch{CurrentPage: &n} }

// Sort changes the sort column and direction.
func Sort(field, direction string) Patch {
	return Patch{SortField: &field, SortDirection: &direction}
}

// Search sets the query and returns to the first page.
func Search(q string) Patch {
	one := 1
	return Patch{SearchQuery: &q, CurrentPage: &one}
}

// Tab switches the active tab and returns to the first page.
func Tab(tab string) Patch {
	one := 1
	return Patch{ActiveTab: &tab, CurrentPage: &one}
}
