package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

// failingStore simulates a registry whose persistence layer is broken.
type failingStore struct {
	loaded []string
}

func (s *failingStore) Load() ([]string, error) { return s.loaded, nil }
func (s *failingStore) Save([]string) error     { return fmt.Errorf("disk full") }

func newFileRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clients.json")
	r, err := New(NewFileStore(path), 0)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r, path
}

func TestAddIsIdempotent(t *testing.T) {
	r, path := newFileRegistry(t)

	if err := r.Add("acme"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := r.Add("acme"); err != nil {
		t.Fatalf("second add: %v", err)
	}

	got := r.List()
	if len(got) != 1 || got[0] != "acme" {
		t.Errorf("list after double add: %v", got)
	}

	// A fresh registry over the same file sees the same single entry.
	r2, err := New(NewFileStore(path), 0)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got = r2.List()
	if len(got) != 1 || got[0] != "acme" {
		t.Errorf("list after reload: %v", got)
	}
}

func TestAddDurableBeforeReturn(t *testing.T) {
	r, path := newFileRegistry(t)
	if err := r.Add("globex"); err != nil {
		t.Fatalf("add: %v", err)
	}

	names, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(names) != 1 || names[0] != "globex" {
		t.Errorf("persisted set: %v", names)
	}
}

func TestAddPersistFailureRollsBack(t *testing.T) {
	r, err := New(&failingStore{}, 0)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	err = r.Add("acme")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("name kept in memory despite failed persist: %v", r.List())
	}
}

func TestAddConcurrent(t *testing.T) {
	r, path := newFileRegistry(t)

	// Overlapping names across goroutines: every name is added by several
	// workers at once, so both the mutex and the idempotence are exercised.
	names := []string{"acme", "globex", "initech", "umbrella", "hooli"}
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range names {
				if err := r.Add(name); err != nil {
					t.Errorf("concurrent add %q: %v", name, err)
				}
			}
		}()
	}
	wg.Wait()

	got := r.List()
	if len(got) != len(names) {
		t.Fatalf("list after concurrent adds: %v", got)
	}

	persisted, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(persisted) != len(names) {
		t.Errorf("persisted set: %v", persisted)
	}
	sort.Strings(persisted)
	for i, name := range got {
		if persisted[i] != name {
			t.Errorf("persisted set diverges from memory: %v vs %v", persisted, got)
			break
		}
	}
}

func TestAddRejectsEmptyName(t *testing.T) {
	r, _ := newFileRegistry(t)
	if err := r.Add(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestSeedMergesWithoutPersisting(t *testing.T) {
	r, path := newFileRegistry(t)
	if err := r.Add("acme"); err != nil {
		t.Fatalf("add: %v", err)
	}

	r.Seed("initech", "acme", "")

	got := r.List()
	if len(got) != 2 || got[0] != "acme" || got[1] != "initech" {
		t.Errorf("list after seed: %v", got)
	}

	names, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("seed leaked into persisted set: %v", names)
	}
}

func TestMissingFileIsEmptyRegistry(t *testing.T) {
	r, err := New(NewFileStore(filepath.Join(t.TempDir(), "nope", "clients.json")), 0)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("expected empty registry, got %v", r.List())
	}
}

func TestSearchRanksAndFilters(t *testing.T) {
	r, _ := newFileRegistry(t)
	r.Seed("acme", "acme-labs", "globex", "initech")

	got := r.Search("acme", 10)
	if len(got) == 0 || got[0] != "acme" {
		t.Fatalf("expected exact match first, got %v", got)
	}
	for _, name := range got {
		if name == "initech" {
			t.Errorf("unrelated name passed threshold: %v", got)
		}
	}
}

func TestSearchToleratesTypos(t *testing.T) {
	r, _ := newFileRegistry(t)
	r.Seed("globex")

	got := r.Search("globx", 5)
	if len(got) != 1 || got[0] != "globex" {
		t.Errorf("typo query: %v", got)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	r, _ := newFileRegistry(t)
	for i := 0; i < 10; i++ {
		r.Seed(fmt.Sprintf("client-%d", i))
	}

	if got := r.Search("client", 3); len(got) > 3 {
		t.Errorf("limit ignored: %v", got)
	}
	if got := r.Search("", 3); len(got) != 3 {
		t.Errorf("empty query limit: %v", got)
	}
}

func TestSearchEmptyQueryIsDeterministic(t *testing.T) {
	r, _ := newFileRegistry(t)
	r.Seed("zeta", "alpha", "mid")

	first := r.Search("", 10)
	for i := 0; i < 5; i++ {
		again := r.Search("", 10)
		if len(again) != len(first) {
			t.Fatalf("unstable result length: %v vs %v", again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("unstable order: %v vs %v", again, first)
			}
		}
	}
	if first[0] != "alpha" {
		t.Errorf("expected sorted order, got %v", first)
	}
}
