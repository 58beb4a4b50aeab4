package schedule

import (
	"testing"

	"github.com/dalbodeule/calbot/internal/model"
)

func TestViewCachePutGet(t *testing.T) {
	c := NewViewCache()

	if _, ok := c.Get("user-1"); ok {
		t.Fatal("empty cache reported a snapshot")
	}

	recs := []model.EventRecord{{ID: "a"}, {ID: "b"}}
	c.Put("user-1", recs)

	got, ok := c.Get("user-1")
	if !ok || len(got) != 2 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestViewCachePutReplacesWholesale(t *testing.T) {
	c := NewViewCache()
	c.Put("user-1", []model.EventRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	c.Put("user-1", []model.EventRecord{{ID: "z"}})

	got, ok := c.Get("user-1")
	if !ok || len(got) != 1 || got[0].ID != "z" {
		t.Fatalf("replace did not happen wholesale: %v", got)
	}
}

func TestViewCacheIsolatesRequesters(t *testing.T) {
	c := NewViewCache()
	c.Put("user-1", []model.EventRecord{{ID: "a"}})
	c.Put("user-2", []model.EventRecord{{ID: "b"}})

	got1, _ := c.Get("user-1")
	got2, _ := c.Get("user-2")
	if got1[0].ID != "a" || got2[0].ID != "b" {
		t.Fatalf("entries crossed requesters: %v %v", got1, got2)
	}
}

func TestViewCacheEmptySnapshotIsStored(t *testing.T) {
	c := NewViewCache()
	c.Put("user-1", nil)

	// An empty day still counts as a view; the entry exists but holds no
	// records.
	got, ok := c.Get("user-1")
	if !ok {
		t.Fatal("empty snapshot was not stored")
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %v", got)
	}
}
