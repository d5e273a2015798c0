package board

import (
	"sync"
	"time"

	"github.com/david/volunteer-board/internal/models"
	"github.com/david/volunteer-board/internal/search"
)

// Snapshot is a consistent view of the loaded data. Its slices are never
// mutated after publication; a reload replaces them wholesale.
type Snapshot struct {
	Events       []models.EventRecord
	Facets       search.FacetSet
	Applications []models.ApplicationRecord

	Loading         bool
	EventsLoaded    bool
	EventsErr       error
	ApplicationsErr error
	LoadedAt        time.Time
}

// QueryResult is the filtered subset of events plus the status to show for it.
type QueryResult struct {
	Events   []models.EventRecord `json:"events"`
	Count    int                  `json:"count"`
	Criteria search.Criteria      `json:"criteria"`
	Status   Status               `json:"status"`
}

// State owns the loaded record sets. The Loader is its only writer; every
// other component reads through the accessors.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState returns an empty state that reports loading until the first
// load completes.
func NewState() *State {
	return &State{snap: Snapshot{
		Events:       []models.EventRecord{},
		Facets:       search.BuildFacetSet(nil),
		Applications: []models.ApplicationRecord{},
	}}
}

// Snapshot returns the current data.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Events returns the full event set.
func (s *State) Events() []models.EventRecord {
	return s.Snapshot().Events
}

// Facets returns the facets of the full event set.
func (s *State) Facets() search.FacetSet {
	return s.Snapshot().Facets
}

// Applications returns the application set.
func (s *State) Applications() []models.ApplicationRecord {
	return s.Snapshot().Applications
}

// Query filters the full event set with c and computes the matching status.
func (s *State) Query(c search.Criteria) QueryResult {
	return s.Snapshot().Query(c)
}

// Query filters the snapshot's events with c. Events, facets and status all
// come from the same load.
func (snap Snapshot) Query(c search.Criteria) QueryResult {
	events := search.Filter(snap.Events, c)
	return QueryResult{
		Events:   events,
		Count:    len(events),
		Criteria: c,
		Status:   snap.status(len(events), !c.IsEmpty()),
	}
}

// Status is the status of the unfiltered view.
func (s *State) Status() Status {
	snap := s.Snapshot()
	return snap.status(len(snap.Events), false)
}

func (snap Snapshot) status(matched int, filtered bool) Status {
	notYetLoaded := !snap.EventsLoaded && snap.EventsErr == nil
	return ComputeStatus(snap.Loading || notYetLoaded, snap.EventsErr != nil, len(snap.Events), matched, filtered)
}

func (s *State) beginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = true
}

func (s *State) endLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = false
}

// publishEvents replaces the event set and recomputes its facets.
func (s *State) publishEvents(events []models.EventRecord, at time.Time) {
	facets := search.BuildFacetSet(events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Events = events
	s.snap.Facets = facets
	s.snap.EventsLoaded = true
	s.snap.EventsErr = nil
	s.snap.LoadedAt = at
}

// failEvents records a failed events load. Previously loaded events are kept.
func (s *State) failEvents(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.EventsErr = err
}

func (s *State) publishApplications(apps []models.ApplicationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Applications = apps
	s.snap.ApplicationsErr = nil
}

func (s *State) failApplications(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ApplicationsErr = err
}

// View is one of the role views that reports a status.
type View string

const (
	ViewStudent View = "student"
	ViewTeacher View = "teacher"
)

// Criteria restricts c to the filters v offers. The teacher table has no
// keyword box.
func (v View) Criteria(c search.Criteria) search.Criteria {
	if v == ViewTeacher {
		c.Keyword = ""
	}
	return c
}

// StatusFor is the status v shows for criteria c.
func (s *State) StatusFor(v View, c search.Criteria) Status {
	return s.Query(v.Criteria(c)).Status
}
