package scaffold

import (
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/tacogips/mkapp/internal/debug"
)

// Entry is the listing view of a scaffold.
type Entry struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription"`
	Featured         Featured `json:"featured"`
}

// Listing is the registry partitioned into featured and non-featured entries.
// Every scaffold appears in exactly one of the two slices.
type Listing struct {
	// Featured entries, ascending by order; boolean-featured entries last.
	Featured []Entry
	// Others keeps discovery order.
	Others []Entry
}

// All returns featured entries followed by the others.
func (l *Listing) All() []Entry {
	out := make([]Entry, 0, len(l.Featured)+len(l.Others))
	out = append(out, l.Featured...)
	return append(out, l.Others...)
}

// Names returns every scaffold name in listing order.
func (l *Listing) Names() []string {
	all := l.All()
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name
	}
	return names
}

// Registry enumerates scaffold definitions under the root of an fs.FS.
// Each directory at the root is one scaffold holding a scaffold.yaml.
type Registry struct {
	fsys fs.FS

	mu   sync.Mutex
	defs map[string]*Definition
}

// NewRegistry creates a registry over fsys.
func NewRegistry(fsys fs.FS) *Registry {
	return &Registry{
		fsys: fsys,
		defs: make(map[string]*Definition),
	}
}

// Names returns the scaffold names in discovery order.
func (r *Registry) Names() ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, newDiscoveryError("", "failed to read scaffold directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Load reads and validates the definition for name.
func (r *Registry) Load(name string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.defs[name]; ok {
		return def, nil
	}

	if !fs.ValidPath(name) || name == "." {
		return nil, newDiscoveryError(name, "invalid scaffold name", nil)
	}

	data, err := fs.ReadFile(r.fsys, path.Join(name, DefinitionFile))
	if err != nil {
		return nil, newDiscoveryError(name, "failed to read "+DefinitionFile, err)
	}

	def, err := ParseDefinition(name, data)
	if err != nil {
		return nil, err
	}

	debug.Debug("[scaffold] Loaded definition %s (flags=%d, install=%s, start=%s)",
		name, len(def.Flags), def.Install.Kind(), def.Start.Kind())
	r.defs[name] = def
	return def, nil
}

// List loads every scaffold and partitions it into featured and the rest.
// Any unreadable entry fails the whole listing.
func (r *Registry) List() (*Listing, error) {
	names, err := r.Names()
	if err != nil {
		return nil, err
	}

	listing := &Listing{}
	for _, name := range names {
		def, err := r.Load(name)
		if err != nil {
			return nil, err
		}
		entry := Entry{
			Name:             def.Name,
			ShortDescription: def.ShortDescription,
			Featured:         def.Featured,
		}
		if entry.Featured.Enabled {
			listing.Featured = append(listing.Featured, entry)
		} else {
			listing.Others = append(listing.Others, entry)
		}
	}

	sort.SliceStable(listing.Featured, func(i, j int) bool {
		return listing.Featured[i].Featured.SortKey() < listing.Featured[j].Featured.SortKey()
	})

	debug.Debug("[scaffold] Listed %d featured and %d other scaffolds", len(listing.Featured), len(listing.Others))
	return listing, nil
}

// Has reports whether name exactly matches a scaffold directory.
func (r *Registry) Has(name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	names, err := r.Names()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
