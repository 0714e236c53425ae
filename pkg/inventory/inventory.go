// Package inventory exports the object registry of a build to a JSON file and
// reads it back, so that independently built documentation sets can link to
// each other.
package inventory

import (
	"encoding/json"
	"io"
	"os"
	"path"
	"slices"

	"github.com/spf13/afero"
	"github.com/walteh/eqldoc/pkg/registry"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

const Version = 1

var (
	ErrVersion = errors.New("unsupported inventory version")
	ErrDomain  = errors.New("inventory belongs to another domain")
)

// Inventory is the on-disk form of a registry
type Inventory struct {
	Version int              `json:"version"`
	Domain  string           `json:"domain"`
	Project string           `json:"project,omitempty"`
	Entries []registry.Entry `json:"entries"`
}

// FromRegistry snapshots reg.
func FromRegistry(domain, project string, reg *registry.Registry) *Inventory {
	inv := &Inventory{Version: Version, Domain: domain, Project: project, Entries: []registry.Entry{}}
	for e := range reg.All() {
		inv.Entries = append(inv.Entries, e)
	}
	return inv
}

// Registry builds a registry holding the inventory entries.
func (inv *Inventory) Registry() (*registry.Registry, error) {
	reg := registry.New()
	for _, e := range inv.Entries {
		if err := reg.RegisterEntry(e); err != nil {
			return nil, errors.Errorf("inventory %s: %w", inv.Project, err)
		}
	}
	return reg, nil
}

// Documents lists, sorted, the documents the inventory entries belong to.
func (inv *Inventory) Documents() []string {
	seen := map[string]bool{}
	var docs []string
	for _, e := range inv.Entries {
		if !seen[e.Document] {
			seen[e.Document] = true
			docs = append(docs, e.Document)
		}
	}
	slices.Sort(docs)
	return docs
}

func Encode(w io.Writer, inv *Inventory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inv); err != nil {
		return errors.Errorf("encoding inventory: %w", err)
	}
	return nil
}

// Decode reads an inventory, rejecting versions it does not know.
func Decode(r io.Reader) (*Inventory, error) {
	var inv Inventory
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&inv); err != nil {
		return nil, errors.Errorf("decoding inventory: %w", err)
	}
	if inv.Version != Version {
		return nil, errors.Errorf("%w: %d", ErrVersion, inv.Version)
	}
	return &inv, nil
}

// Save writes inv to p, creating parent directories.
func Save(fs afero.Fs, p string, inv *Inventory) (err error) {
	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating inventory directory: %w", err)
		}
	}

	f, err := fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Errorf("creating inventory file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return Encode(f, inv)
}

// Load reads the inventory at p. A non-empty domain must match the inventory's.
func Load(fs afero.Fs, p, domain string) (inv *Inventory, err error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, errors.Errorf("opening inventory file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	inv, err = Decode(f)
	if err != nil {
		return nil, err
	}
	if domain != "" && inv.Domain != domain {
		return nil, errors.Errorf("%w: %q, expected %q", ErrDomain, inv.Domain, domain)
	}
	return inv, nil
}
