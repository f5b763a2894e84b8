package kb

import (
	"testing"

	"github.com/skyfreelabs/skyfree/model"
)

func TestAddRecordRejectsDuplicateID(t *testing.T) {
	store := NewStore()

	if err := store.AddRecord(&model.MeasurementRecord{ID: "sdss-1", Catalog: model.CatalogSDSS}); err != nil {
		t.Fatalf("first AddRecord failed: %v", err)
	}
	if err := store.AddRecord(&model.MeasurementRecord{ID: "sdss-1", Catalog: model.CatalogSDSS}); err == nil {
		t.Fatalf("expected duplicate ID to be rejected")
	}

	if got := store.GetRecord("sdss-1"); got == nil {
		t.Fatalf("expected record to be retrievable after add")
	}
	if got := store.GetRecord("missing"); got != nil {
		t.Fatalf("expected nil for unknown ID, got %+v", got)
	}
}

func TestListByCatalogOrdersByID(t *testing.T) {
	store := NewStore()
	for _, rec := range []*model.MeasurementRecord{
		{ID: "desi-2", Catalog: model.CatalogDESI},
		{ID: "sdss-9", Catalog: model.CatalogSDSS},
		{ID: "desi-1", Catalog: model.CatalogDESI},
	} {
		if err := store.AddRecord(rec); err != nil {
			t.Fatalf("AddRecord(%s): %v", rec.ID, err)
		}
	}

	got := store.ListByCatalog(model.CatalogDESI)
	if len(got) != 2 {
		t.Fatalf("expected 2 DESI records, got %d", len(got))
	}
	if got[0].ID != "desi-1" || got[1].ID != "desi-2" {
		t.Fatalf("expected ID-ordered listing, got %s then %s", got[0].ID, got[1].ID)
	}

	if all := store.ListRecords(); len(all) != 3 {
		t.Fatalf("expected 3 records overall, got %d", len(all))
	}
}

func TestAttachDerivedRequiresRecord(t *testing.T) {
	store := NewStore()
	if err := store.AttachDerived(model.DerivedQuantity{RecordID: "ghost"}); err == nil {
		t.Fatalf("expected attach to an unknown record to fail")
	}

	if err := store.AddRecord(&model.MeasurementRecord{ID: "neo-1", Catalog: model.CatalogNEO}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	q := model.DerivedQuantity{RecordID: "neo-1", Kind: model.KindOrbitalParameterSet, Value: 1.0, Valid: true}
	if err := store.AttachDerived(q); err != nil {
		t.Fatalf("AttachDerived: %v", err)
	}

	derived := store.DerivedFor("neo-1")
	if len(derived) != 1 || derived[0].Kind != model.KindOrbitalParameterSet {
		t.Fatalf("unexpected derived set: %+v", derived)
	}

	// Mutating the returned slice must not affect the store.
	derived[0].Valid = false
	if again := store.DerivedFor("neo-1"); !again[0].Valid {
		t.Fatalf("DerivedFor should return a copy")
	}
}

func TestSnapshotIsDetachedCopy(t *testing.T) {
	store := NewStore()
	z := 0.05
	if err := store.AddRecord(&model.MeasurementRecord{ID: "sdss-1", Catalog: model.CatalogSDSS, Redshift: &z}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	snap := store.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 record in snapshot, got %d", len(snap))
	}
	snap[0].ID = "mutated"
	if store.GetRecord("sdss-1") == nil {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	store := NewStore()

	var events []Event
	unsub := store.Subscribe(func(e Event) { events = append(events, e) })

	if err := store.AddRecord(&model.MeasurementRecord{ID: "sdss-1", Catalog: model.CatalogSDSS}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := store.AttachDerived(model.DerivedQuantity{RecordID: "sdss-1", Kind: model.KindHubbleDistance}); err != nil {
		t.Fatalf("AttachDerived: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventRecordAdded || events[1].Type != EventQuantityAttached {
		t.Fatalf("unexpected event sequence: %+v", events)
	}

	unsub()
	if err := store.AddRecord(&model.MeasurementRecord{ID: "sdss-2", Catalog: model.CatalogSDSS}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(events))
	}
}

type countingGauges struct{ last int }

func (g *countingGauges) SetStoreCount(n int) { g.last = n }

func TestGaugesTrackRecordCount(t *testing.T) {
	store := NewStore()
	g := &countingGauges{}
	store.SetGauges(g)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.AddRecord(&model.MeasurementRecord{ID: id}); err != nil {
			t.Fatalf("AddRecord(%s): %v", id, err)
		}
	}
	if g.last != 3 {
		t.Fatalf("expected gauge at 3, got %d", g.last)
	}
}
