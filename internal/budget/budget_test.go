package budget

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	backend, err := docstore.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	svc := NewService(docstore.New(backend))
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string { n++; return fmt.Sprintf("rec-%d", n) }
	return svc
}

func TestGetOrCreatePersistsEmptyBudget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.GetOrCreate(ctx, "c1")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if b.ClientID != "c1" || b.Total != 0 || len(b.Records) != 0 {
		t.Fatalf("unexpected fresh budget: %+v", b)
	}

	// The empty budget is written, not just returned.
	all, err := docstore.LoadAll[models.Budget](ctx, svc.store, docstore.CollBudgets)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("budget not persisted on first access, got %d", len(all))
	}

	if _, err := svc.GetOrCreate(ctx, "c1"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	all, _ = docstore.LoadAll[models.Budget](ctx, svc.store, docstore.CollBudgets)
	if len(all) != 1 {
		t.Fatalf("second access created a duplicate, got %d", len(all))
	}
}

func TestUpdateMergesMaps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	total := 10000.0
	if _, err := svc.Update(ctx, "c1", UpdateInput{
		Total:       &total,
		Allocations: map[string]float64{"caterer": 4000, "band": 1000},
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// A later patch only overwrites the keys it names.
	b, err := svc.Update(ctx, "c1", UpdateInput{
		Allocations: map[string]float64{"band": 1500},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if b.Total != 10000 {
		t.Errorf("total = %v, want preserved 10000", b.Total)
	}
	if b.Allocations["caterer"] != 4000 || b.Allocations["band"] != 1500 {
		t.Errorf("allocations = %v, want caterer 4000, band 1500", b.Allocations)
	}
}

func TestRecordIncrementsActualsAndPrepends(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "c1", RecordInput{Category: "hairdresser", Amount: 150, Date: "2025-05-01"}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	b, err := svc.Record(ctx, "c1", RecordInput{Category: "hairdresser", Amount: 100})
	if err != nil {
		t.Fatalf("second record: %v", err)
	}

	if b.Actuals["hairdresser"] != 250 {
		t.Errorf("actuals = %v, want 250", b.Actuals["hairdresser"])
	}
	if len(b.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(b.Records))
	}
	if b.Records[0].Amount != 100 {
		t.Errorf("newest record not first: %+v", b.Records)
	}
	if b.Records[0].Date != "2025-06-01" {
		t.Errorf("date = %q, want default today", b.Records[0].Date)
	}
	if b.Records[1].Date != "2025-05-01" {
		t.Errorf("explicit date lost: %q", b.Records[1].Date)
	}
}

func TestRecordRequiresCategory(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Record(context.Background(), "c1", RecordInput{Amount: 50})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}
