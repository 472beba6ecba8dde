package gateway

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
)

func testCSV(t *testing.T) *CSV {
	t.Helper()
	gw, err := NewCSV(filepath.Join(t.TempDir(), "data.csv"))
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	return gw
}

func TestCSV_LoadMissingFile(t *testing.T) {
	gw := testCSV(t)
	set, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %d records", len(set))
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	gw := testCSV(t)
	in := models.RecordSet{
		{
			ID: "s1", Type: models.TypeSubscription, Description: "Streaming",
			Value: decimal.RequireFromString("39.90"), Category: "cat-1",
			Account: "acc-1", BillingDay: 10, Active: true,
		},
		{
			ID: "e1", Type: models.TypeExpense, Date: "2025-04-10",
			Description: "Streaming", Value: decimal.RequireFromString("39.90"),
			RelatedID: "s1", Status: models.StatusPaid, Notes: "auto",
		},
		{ID: "c1", Type: models.TypeCategory, Description: "Home"},
	}
	if err := gw.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("loaded %d records, want 3", len(out))
	}
	sub := out[0]
	if sub.ID != "s1" || sub.BillingDay != 10 || !sub.Active {
		t.Errorf("subscription round-trip lost fields: %+v", sub)
	}
	if !sub.Value.Equal(decimal.RequireFromString("39.90")) {
		t.Errorf("value = %s, want 39.90", sub.Value)
	}
	if out[1].RelatedID != "s1" || out[1].Status != models.StatusPaid {
		t.Errorf("expense round-trip lost fields: %+v", out[1])
	}
	if !out[2].Value.IsZero() {
		t.Errorf("category value = %s, want zero", out[2].Value)
	}
}

func TestCSV_FixedColumnOrder(t *testing.T) {
	gw := testCSV(t)
	if err := gw.Save(models.RecordSet{{ID: "a", Type: models.TypeExpense}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(gw.Path())
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	want := "id,type,date,description,value,category,account,paymentMethod,status,notes,relatedId,billingDay,active"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}

func TestCSV_ToleratesShortAndExtraColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	// A row without the trailing columns, and one with an unknown extra column.
	raw := "id,type,date,description,value,category,account,paymentMethod,status,notes,relatedId,mystery\n" +
		"x1,EXPENSE,2025-01-05,lunch,20\n" +
		"x2,INCOME,2025-01-06,refund,15,,,,,,,wat\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	gw, err := NewCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	set, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("loaded %d records, want 2", len(set))
	}
	if set[0].ID != "x1" || set[0].Description != "lunch" || !set[0].Value.Equal(decimal.NewFromInt(20)) {
		t.Errorf("short row mis-parsed: %+v", set[0])
	}
	if set[1].ID != "x2" || set[1].Type != models.TypeIncome {
		t.Errorf("extra-column row mis-parsed: %+v", set[1])
	}
}

func TestCSV_ChecksumTracksDurableBytes(t *testing.T) {
	gw := testCSV(t)
	if gw.LastChecksum() != "" {
		t.Error("fresh gateway should have no checksum")
	}
	_ = gw.Save(models.RecordSet{{ID: "a", Type: models.TypeExpense}})
	first := gw.LastChecksum()
	if first == "" {
		t.Fatal("checksum empty after save")
	}
	_ = gw.Save(models.RecordSet{{ID: "b", Type: models.TypeExpense}})
	if gw.LastChecksum() == first {
		t.Error("checksum unchanged after different save")
	}

	// A second gateway loading the same file converges on the same checksum.
	gw2, _ := NewCSV(gw.Path())
	if _, err := gw2.Load(); err != nil {
		t.Fatal(err)
	}
	if gw2.LastChecksum() != gw.LastChecksum() {
		t.Error("load checksum differs from save checksum for identical bytes")
	}
}
