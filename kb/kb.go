package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/skyfreelabs/skyfree/model"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventRecordAdded EventType = iota
	EventQuantityAttached
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type     EventType
	Record   model.MeasurementRecord
	Quantity model.DerivedQuantity
}

// Gauges receives the current record count after every mutation. The
// observability collector implements it; a nil gauge is ignored.
type Gauges interface {
	SetStoreCount(records int)
}

// Store is an in-memory, thread-safe home for validated measurement records
// and the quantities derived from them.
type Store struct {
	mu sync.RWMutex

	records map[string]*model.MeasurementRecord
	derived map[string][]model.DerivedQuantity

	subs   []func(Event)
	gauges Gauges
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*model.MeasurementRecord),
		derived: make(map[string][]model.DerivedQuantity),
	}
}

// SetGauges attaches a gauge sink that tracks the record count.
func (s *Store) SetGauges(g Gauges) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges = g
	if s.gauges != nil {
		s.gauges.SetStoreCount(len(s.records))
	}
}

// AddRecord adds a validated record. It returns an error if the ID already
// exists.
func (s *Store) AddRecord(rec *model.MeasurementRecord) error {
	s.mu.Lock()

	if _, exists := s.records[rec.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("record with ID %q already exists", rec.ID)
	}
	s.records[rec.ID] = rec
	if s.gauges != nil {
		s.gauges.SetStoreCount(len(s.records))
	}
	event := Event{
		Type:   EventRecordAdded,
		Record: *rec, // copy for safety
	}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetRecord returns the record with the given ID, or nil if not found.
func (s *Store) GetRecord(id string) *model.MeasurementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// ListRecords returns a snapshot slice of all records, ordered by ID.
func (s *Store) ListRecords() []*model.MeasurementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*model.MeasurementRecord, 0, len(s.records))
	for _, rec := range s.records {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// ListByCatalog returns all records from the given catalog, ordered by ID.
func (s *Store) ListByCatalog(cat model.Catalog) []*model.MeasurementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*model.MeasurementRecord, 0)
	for _, rec := range s.records {
		if rec.Catalog == cat {
			res = append(res, rec)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// AttachDerived stores a derived quantity against its record and notifies
// subscribers. The record must already exist.
func (s *Store) AttachDerived(q model.DerivedQuantity) error {
	s.mu.Lock()
	if _, ok := s.records[q.RecordID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("record with ID %q not found", q.RecordID)
	}
	s.derived[q.RecordID] = append(s.derived[q.RecordID], q)
	event := Event{
		Type:     EventQuantityAttached,
		Record:   *s.records[q.RecordID],
		Quantity: q,
	}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// DerivedFor returns a copy of the quantities attached to the given record.
func (s *Store) DerivedFor(id string) []model.DerivedQuantity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DerivedQuantity(nil), s.derived[id]...)
}

// Snapshot returns a consistent copy of every record, ordered by ID. Fits
// that need all points at once, like the Hubble-constant estimate, read from
// a snapshot so concurrent ingestion cannot skew the sample mid-fit.
func (s *Store) Snapshot() []model.MeasurementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.MeasurementRecord, 0, len(s.records))
	for _, rec := range s.records {
		res = append(res, *rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Subscribe registers a callback for store events. It returns an unsubscribe
// function.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}
