// Package registry is the per-build object table mapping qualified construct
// names to the document that declares them.
package registry

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/walteh/eqldoc/pkg/construct"
	"gitlab.com/tozd/go/errors"
)

var ErrDuplicate = errors.New("duplicate declaration")

// Entry is one declared construct.
type Entry struct {
	Name     string         `json:"name"`
	Kind     construct.Kind `json:"kind"`
	Document string         `json:"document"`
	// Display and Summary feed index pages, they are empty for bare registrations
	Display string `json:"display,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// DuplicateError reports a name that is already taken.
type DuplicateError struct {
	Entry    Entry
	Existing Entry
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %s description, already declared in %s", e.Entry.Kind, e.Entry.Name, e.Existing.Document)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Registry is safe for concurrent use. Keys are lower-cased.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register declares name in doc.
func (r *Registry) Register(name string, kind construct.Kind, doc string) error {
	return r.RegisterEntry(Entry{Name: name, Kind: kind, Document: doc})
}

// RegisterEntry declares e, failing when its name is already present.
func (r *Registry) RegisterEntry(e Entry) error {
	e.Name = key(e.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[e.Name]; ok {
		return &DuplicateError{Entry: e, Existing: existing}
	}
	r.entries[e.Name] = e
	return nil
}

// Describe attaches a summary to an existing entry.
func (r *Registry) Describe(name, summary string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key(name)]
	if !ok {
		return false
	}
	e.Summary = summary
	r.entries[e.Name] = e
	return true
}

// UnregisterDocument drops every entry declared by doc and returns how many
// were removed.
func (r *Registry) UnregisterDocument(doc string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for name, e := range r.entries {
		if e.Document == doc {
			delete(r.entries, name)
			n++
		}
	}
	return n
}

// Merge replaces the entries of docs with the ones incoming holds for them.
// Entries of other documents in incoming are ignored. An incoming name
// overwrites whatever entry held it before, callers that need first-wins
// semantics check for conflicts before merging.
func (r *Registry) Merge(incoming *Registry, docs []string) {
	allowed := map[string]bool{}
	for _, d := range docs {
		allowed[d] = true
	}

	add := make([]Entry, 0)
	for e := range incoming.All() {
		if allowed[e.Document] {
			add = append(add, e)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, e := range r.entries {
		if allowed[e.Document] {
			delete(r.entries, name)
		}
	}

	for _, e := range add {
		r.entries[e.Name] = e
	}
}

func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key(name)]
	return e, ok
}

// All yields a snapshot of the entries sorted by name.
func (r *Registry) All() iter.Seq[Entry] {
	r.mu.RLock()
	snapshot := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		snapshot = append(snapshot, e)
	}
	r.mu.RUnlock()

	slices.SortFunc(snapshot, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return func(yield func(Entry) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Documents lists the documents that declare at least one entry.
func (r *Registry) Documents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	docs := []string{}
	for _, e := range r.entries {
		if !seen[e.Document] {
			seen[e.Document] = true
			docs = append(docs, e.Document)
		}
	}
	slices.Sort(docs)
	return docs
}
