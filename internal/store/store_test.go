package store

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStore(t *testing.T) (*Store, *testutil.MemoryGateway) {
	t.Helper()
	gw := &testutil.MemoryGateway{}
	return New(gw, testLogger()), gw
}

func TestAdd_RoundTrip(t *testing.T) {
	st, _ := testStore(t)

	rec := st.Add(models.Record{
		Type:        models.TypeExpense,
		Date:        "2025-05-02",
		Description: "groceries",
		Value:       decimal.RequireFromString("84.30"),
		Category:    "cat-food",
	})
	if rec.ID == "" {
		t.Fatal("Add did not assign an id")
	}

	snap := st.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d records, want 1", len(snap))
	}
	got := snap[0]
	if got.ID != rec.ID || got.Description != "groceries" || got.Category != "cat-food" {
		t.Errorf("snapshot record = %+v", got)
	}
	if !got.Value.Equal(decimal.RequireFromString("84.30")) {
		t.Errorf("value = %s", got.Value)
	}

	other := st.Add(models.Record{Type: models.TypeIncome})
	if other.ID == rec.ID {
		t.Error("ids are not unique")
	}
}

func TestUpdate_MergesOnlySubmittedFields(t *testing.T) {
	st, _ := testStore(t)
	rec := st.Add(models.Record{
		Type: models.TypePayable, Date: "2025-05-10",
		Description: "rent", Status: models.StatusPending,
	})

	paid := models.StatusPaid
	updated, ok := st.Update(rec.ID, models.RecordPatch{Status: &paid})
	if !ok {
		t.Fatal("Update reported record missing")
	}
	if updated.Status != models.StatusPaid {
		t.Errorf("status = %s, want PAID", updated.Status)
	}
	if updated.Description != "rent" || updated.Date != "2025-05-10" {
		t.Errorf("unsubmitted fields changed: %+v", updated)
	}
}

func TestUpdateDelete_UnknownIDNoOp(t *testing.T) {
	st, _ := testStore(t)
	st.Add(models.Record{Type: models.TypeExpense})
	st.ClearDirty(st.Version())

	events := st.Subscribe()

	if _, ok := st.Update("ghost", models.RecordPatch{}); ok {
		t.Error("Update(ghost) reported success")
	}
	if st.Delete("ghost") {
		t.Error("Delete(ghost) reported success")
	}
	if st.Dirty() {
		t.Error("no-op mutations marked the store dirty")
	}
	select {
	case ev := <-events:
		t.Errorf("no-op mutation emitted event %+v", ev)
	default:
	}
}

func TestDelete_RemovesOnlyTarget(t *testing.T) {
	st, _ := testStore(t)
	a := st.Add(models.Record{Type: models.TypeExpense, Description: "a"})
	b := st.Add(models.Record{Type: models.TypeExpense, Description: "b"})

	if !st.Delete(a.ID) {
		t.Fatal("Delete returned false for existing record")
	}
	snap := st.Snapshot()
	if len(snap) != 1 || snap[0].ID != b.ID {
		t.Errorf("snapshot after delete = %+v", snap)
	}
}

func TestEvents_ExactlyOnePerMutation(t *testing.T) {
	st, _ := testStore(t)
	events := st.Subscribe()

	rec := st.Add(models.Record{Type: models.TypeExpense})
	notes := "x"
	st.Update(rec.ID, models.RecordPatch{Notes: &notes})
	st.Delete(rec.ID)

	want := []EventKind{KindCreated, KindUpdated, KindDeleted}
	for _, kind := range want {
		ev := <-events
		if ev.Kind != kind {
			t.Errorf("event kind = %s, want %s", ev.Kind, kind)
		}
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected extra event %+v", ev)
	default:
	}
}

func TestDirtyAndVersion(t *testing.T) {
	st, _ := testStore(t)
	if st.Dirty() {
		t.Fatal("fresh store is dirty")
	}

	rec := st.Add(models.Record{Type: models.TypeExpense})
	if !st.Dirty() {
		t.Fatal("Add did not mark dirty")
	}
	v := st.Version()

	// A mutation after the remembered version must defeat ClearDirty.
	st.Delete(rec.ID)
	if st.ClearDirty(v) {
		t.Error("ClearDirty succeeded despite newer mutation")
	}
	if !st.Dirty() {
		t.Error("dirty flag lost")
	}
	if !st.ClearDirty(st.Version()) {
		t.Error("ClearDirty failed at current version")
	}
	if st.Dirty() {
		t.Error("store still dirty after ClearDirty")
	}
}

func TestLoad_FailsOpen(t *testing.T) {
	gw := &testutil.MemoryGateway{LoadErr: errors.New("disk on fire")}
	st := New(gw, testLogger())

	st.Load()

	if len(st.Snapshot()) != 0 {
		t.Error("failed load should leave the store empty")
	}
	if st.Dirty() {
		t.Error("failed load should not mark the store dirty")
	}
}

func TestLoad_ReplacesSetAndClearsDirty(t *testing.T) {
	gw := &testutil.MemoryGateway{}
	_ = gw.Save(models.RecordSet{{ID: "persisted", Type: models.TypeIncome}})
	st := New(gw, testLogger())

	st.Add(models.Record{Type: models.TypeExpense})
	st.Load()

	snap := st.Snapshot()
	if len(snap) != 1 || snap[0].ID != "persisted" {
		t.Errorf("snapshot after load = %+v", snap)
	}
	if st.Dirty() {
		t.Error("freshly loaded store is dirty")
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	st, _ := testStore(t)
	st.Add(models.Record{Type: models.TypeExpense, Description: "original"})

	snap := st.Snapshot()
	snap[0].Description = "mutated"

	if st.Snapshot()[0].Description != "original" {
		t.Error("mutating a snapshot leaked into the store")
	}
}
