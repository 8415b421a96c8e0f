package store_test

import (
	"testing"
	"time"

	"github.com/christopherklint97/claim/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestState(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetState("missing")
	if err != nil || got != "" {
		t.Fatalf("GetState(missing) = %q, %v, want empty", got, err)
	}

	if err := db.SetState("group:1:2025", "g1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetState("group:1:2025", "g2"); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetState("group:1:2025"); got != "g2" {
		t.Errorf("GetState() = %q, want %q", got, "g2")
	}

	n, err := db.DeleteStatePrefix("group:")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DeleteStatePrefix() removed %d rows, want 1", n)
	}
}

func TestOperations(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	ops := []store.Operation{
		{Action: store.ActionAdd, ItemID: "1", Date: "2025-03-03", Activity: 1, Customer: "Acme", WorkItem: "WI-1", Hours: 8, CreatedAt: base},
		{Action: store.ActionUpdate, ItemID: "1", Date: "2025-03-03", Activity: 1, Hours: 7.5, Comment: "fix", CreatedAt: base.Add(time.Minute)},
		{Action: store.ActionDelete, ItemID: "2", Date: "2025-03-04", Activity: 2, Status: store.StatusFailed, Error: "boom", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range ops {
		if _, err := db.RecordOperation(&ops[i]); err != nil {
			t.Fatalf("RecordOperation() error: %v", err)
		}
		if ops[i].ID == 0 {
			t.Errorf("operation %d has no ID", i)
		}
	}

	recent, err := db.RecentOperations(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentOperations(2) returned %d rows", len(recent))
	}
	if recent[0].Action != store.ActionDelete || recent[1].Action != store.ActionUpdate {
		t.Errorf("RecentOperations order = %s, %s", recent[0].Action, recent[1].Action)
	}
	if recent[1].Comment != "fix" || recent[1].Hours != 7.5 || recent[1].Status != store.StatusLogged {
		t.Errorf("update row = %+v", recent[1])
	}
	if !recent[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v", recent[0].CreatedAt)
	}

	failed, err := db.FailedOperations()
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Error != "boom" {
		t.Errorf("FailedOperations() = %+v", failed)
	}
}
