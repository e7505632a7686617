package session

import (
	"strings"
	"testing"
	"time"

	"github.com/daktre/theta-data-explorer/internal/dataset"
	"github.com/daktre/theta-data-explorer/internal/filter"
)

func load(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromReader("test.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestNewAndGet(t *testing.T) {
	st := NewStore()
	ds := load(t, "id,category\n1,A\n2,B\n")

	s := st.New(ds)
	if s.ID == "" {
		t.Fatal("expected a session id")
	}

	got, ok := st.Get(s.ID)
	if !ok || got != s {
		t.Fatal("could not get session back")
	}
	gotDS, fs := got.State()
	if gotDS != ds {
		t.Error("session dataset mismatch")
	}
	if len(fs.Columns) != 2 {
		t.Errorf("expected default filters for both columns, got %d", len(fs.Columns))
	}

	if _, ok := st.Get("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestExpiry(t *testing.T) {
	st := NewStore()
	s := st.New(load(t, "id\n1\n"))

	st.mu.Lock()
	s.lastSeen = time.Now().Add(-DefaultTTL - time.Minute)
	st.mu.Unlock()

	if _, ok := st.Get(s.ID); ok {
		t.Error("expired session should be dropped on access")
	}
	if st.Len() != 0 {
		t.Errorf("expected empty store, got %d sessions", st.Len())
	}
}

func TestSweepOnNew(t *testing.T) {
	st := NewStore()
	stale := st.New(load(t, "id\n1\n"))
	st.mu.Lock()
	stale.lastSeen = time.Now().Add(-DefaultTTL - time.Minute)
	st.mu.Unlock()

	st.New(load(t, "id\n2\n"))
	if st.Len() != 1 {
		t.Errorf("stale session should be swept when a new one is created, got %d", st.Len())
	}
}

func TestDelete(t *testing.T) {
	st := NewStore()
	s := st.New(load(t, "id\n1\n"))
	st.Delete(s.ID)
	if _, ok := st.Get(s.ID); ok {
		t.Error("deleted session still resolves")
	}
	st.Delete("nope") // idempotent
}

func TestSetFiltersNormalizes(t *testing.T) {
	st := NewStore()
	s := st.New(load(t, "id,category\n1,A\n2,B\n"))

	applied := s.SetFilters(filter.Set{Columns: map[string]filter.ColumnFilter{
		"category": {Column: "category", Kind: filter.Values, Values: []string{"A"}},
		"ghost":    {Column: "ghost", Kind: filter.Contains, Pattern: "x"},
	}})
	if _, ok := applied.Columns["ghost"]; ok {
		t.Error("stale filter survived SetFilters")
	}
	if _, ok := applied.Columns["category"]; !ok {
		t.Error("valid filter was dropped")
	}
}

func TestReplaceDatasetResetsFilters(t *testing.T) {
	st := NewStore()
	s := st.New(load(t, "id,category\n1,A\n2,B\n"))
	s.SetFilters(filter.Set{Columns: map[string]filter.ColumnFilter{
		"category": {Column: "category", Kind: filter.Values, Values: []string{"A"}},
	}})

	next := load(t, "name,score\nx,1.5\ny,2.5\n")
	s.ReplaceDataset(next)

	ds, fs := s.State()
	if ds != next {
		t.Fatal("dataset was not replaced")
	}
	if _, ok := fs.Columns["category"]; ok {
		t.Error("filters from the old schema survived the swap")
	}
	f, ok := fs.Columns["score"]
	if !ok {
		t.Fatal("expected a default filter for the new numeric column")
	}
	if f.Kind != filter.Range || f.Min != 1.5 || f.Max != 2.5 {
		t.Errorf("default range wrong: %+v", f)
	}
}
