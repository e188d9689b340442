package conversation

import (
	"io"
	"testing"
	"time"

	"mesero/pkg/logger"
)

func newTestStore(t *testing.T, idleTTL time.Duration) *Store {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
	store := NewStore(idleTTL, log)
	t.Cleanup(store.Stop)
	return store
}

func TestStoreGetOrCreateReturnsSameDraft(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	first := store.GetOrCreate("612345678")
	second := store.GetOrCreate("612345678")
	if first != second {
		t.Error("GetOrCreate should return the same draft for the same phone")
	}

	other := store.GetOrCreate("698765432")
	if other == first {
		t.Error("different phones must get different drafts")
	}
	if store.ActiveCount() != 2 {
		t.Errorf("active count = %d, want 2", store.ActiveCount())
	}
}

func TestStoreGetReturnsNilForUnknownPhone(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	if draft := store.Get("612345678"); draft != nil {
		t.Errorf("Get for unknown phone = %+v, want nil", draft)
	}
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	store.GetOrCreate("612345678")
	store.Remove("612345678")

	if store.Get("612345678") != nil {
		t.Error("draft should be gone after Remove")
	}
	if store.ActiveCount() != 0 {
		t.Errorf("active count = %d, want 0", store.ActiveCount())
	}
}

func TestStoreSweepAbandonsIdleDrafts(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	base := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	idle := store.GetOrCreate("612345678")
	active := store.GetOrCreate("698765432")

	// First draft goes quiet, second keeps talking.
	store.now = func() time.Time { return base.Add(31 * time.Minute) }
	active.mu.Lock()
	active.LastActivity = base.Add(25 * time.Minute)
	active.mu.Unlock()

	store.sweep()

	if store.Get("612345678") != nil {
		t.Error("idle draft should be dropped by the sweep")
	}
	if idle.State != StateAbandoned {
		t.Errorf("idle draft state = %q, want %q", idle.State, StateAbandoned)
	}
	if store.Get("698765432") == nil {
		t.Error("active draft should survive the sweep")
	}
}

func TestStoreSweepKeepsDraftAtExactTTL(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	base := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	store.GetOrCreate("612345678")

	store.now = func() time.Time { return base.Add(30 * time.Minute) }
	store.sweep()

	if store.Get("612345678") == nil {
		t.Error("a draft idle for exactly the TTL is not yet expired")
	}
}
