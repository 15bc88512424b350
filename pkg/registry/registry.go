// Package registry maintains the set of known client names and answers
// typo-tolerant lookups over it.
//
// Names arrive from two sources: discovery (directories enumerated from the
// storage gateway) and explicit user entry during an upload negotiation.
// Only user-entered names must be durable; discovered names can always be
// re-enumerated.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// ErrPersist is returned when a user-entered name could not be written to the
// backing store. The negotiation that triggered the add must fail rather than
// continue with a registration that would silently vanish.
var ErrPersist = errors.New("registry persist failed")

// DefaultThreshold is the minimum 0-100 similarity score for a search
// candidate to be returned.
const DefaultThreshold = 60

// Registry is a concurrency-safe set of client names with fuzzy search.
// Persistence is injected so deployments can swap the file-backed store for a
// network-backed one without touching the workflow.
type Registry struct {
	mu        sync.Mutex
	names     map[string]struct{}
	store     Store
	threshold int
}

// New loads the persisted set from store. threshold <= 0 selects
// DefaultThreshold.
func New(store Store, threshold int) (*Registry, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	names, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}

	r := &Registry{
		names:     make(map[string]struct{}, len(names)),
		store:     store,
		threshold: threshold,
	}
	for _, n := range names {
		r.names[n] = struct{}{}
	}
	return r, nil
}

// List returns the known names, sorted. Duplicates across sources collapse to
// one entry.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

// Seed merges backend-discovered names into the in-memory set without
// persisting them.
func (r *Registry) Seed(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if n != "" {
			r.names[n] = struct{}{}
		}
	}
}

// Add registers a user-entered name. Adding a present name is a no-op. The
// name is durable before Add returns; on a store failure the in-memory set is
// rolled back and the error wraps ErrPersist.
func (r *Registry) Add(name string) error {
	if name == "" {
		return errors.New("client name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return nil
	}

	r.names[name] = struct{}{}
	if err := r.store.Save(r.sortedLocked()); err != nil {
		delete(r.names, name)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Search returns up to limit names ranked by similarity to query. Candidates
// scoring below the threshold are excluded even when fewer than limit names
// matched; the two filters are independent. An empty query returns the full
// sorted set truncated to limit.
func (r *Registry) Search(query string, limit int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		return nil
	}

	if query == "" {
		all := r.sortedLocked()
		if len(all) > limit {
			all = all[:limit]
		}
		return all
	}

	type scored struct {
		name  string
		score int
	}

	q := strings.ToLower(query)
	candidates := make([]scored, 0, len(r.names))
	for name := range r.names {
		score := fuzzy.Ratio(q, strings.ToLower(name))
		if score >= r.threshold {
			candidates = append(candidates, scored{name, score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]string, len(candidates))
	for i, c := range candidates {
		result[i] = c.name
	}
	return result
}

func (r *Registry) sortedLocked() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
