package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore"
)

func TestMemstoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	if _, ok, err := s.Get(ctx, "TEST"); err != nil || ok {
		t.Fatalf("empty store Get = %v, %v", ok, err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := lookupstore.Entry{IsValid: true, Definitions: []string{"a procedure", "an exam"}, CachedAt: now}
	if err := s.Put(ctx, "TEST", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "TEST")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if diff := cmp.Diff(entry.Definitions, got.Definitions); diff != "" {
		t.Errorf("definitions mismatch:\n%s", diff)
	}

	got.Definitions[0] = "mutated"
	again, _, _ := s.Get(ctx, "TEST")
	if again.Definitions[0] != "a procedure" {
		t.Error("Get must return a copy")
	}

	if err := s.Delete(ctx, "TEST"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len after delete = %d", s.Len())
	}
}

func TestMemstorePrune(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()

	s.Put(ctx, "OLD", lookupstore.Entry{CachedAt: now.Add(-48 * time.Hour)})
	s.Put(ctx, "NEW", lookupstore.Entry{CachedAt: now})

	n, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 || s.Len() != 1 {
		t.Errorf("Prune removed %d, %d left", n, s.Len())
	}
	if _, ok, _ := s.Get(ctx, "NEW"); !ok {
		t.Error("fresh entry should survive")
	}
}

func TestEntryFresh(t *testing.T) {
	now := time.Now()
	e := lookupstore.Entry{CachedAt: now.Add(-2 * time.Hour)}
	if !e.Fresh(now, 0) {
		t.Error("zero max age accepts any age")
	}
	if !e.Fresh(now, 3*time.Hour) || e.Fresh(now, time.Hour) {
		t.Error("Fresh does not honor max age")
	}
}
