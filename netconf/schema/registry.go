package schema

import (
	"encoding/xml"

	"github.com/damianoneill/nctree/netconf/leaf"
	"github.com/damianoneill/nctree/netconf/tree"
)

// Schema bindings supply the kind of each named node, the type of each leaf and the keys of each list.
// The tree and parser consume them through the Lookup interface.

// Entry describes a schema node.
type Entry struct {
	Kind tree.Kind
	// Type governs the parsing of a leaf value.
	Type leaf.Type
	// Keys names the key leaves of a list.
	Keys []string
}

// Lookup delivers the schema entry for the node with the namespace and local name.
type Lookup interface {
	Lookup(space, local string) (Entry, bool)
}

// Registry is a map-based Lookup. It is safe for concurrent lookups once populated.
type Registry struct {
	entries map[xml.Name]Entry
}

// NewRegistry delivers an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[xml.Name]Entry{}}
}

// Register adds or replaces the entry for the node named name.
func (r *Registry) Register(name xml.Name, e Entry) *Registry {
	e.Keys = append([]string(nil), e.Keys...)
	r.entries[name] = e
	return r
}

// Leaf registers a leaf of type t.
func (r *Registry) Leaf(space, local string, t leaf.Type) *Registry {
	return r.Register(xml.Name{Space: space, Local: local}, Entry{Kind: tree.Leaf, Type: t})
}

// Container registers a container.
func (r *Registry) Container(space, local string) *Registry {
	return r.Register(xml.Name{Space: space, Local: local}, Entry{Kind: tree.Container})
}

// List registers a list identified by the key leaves.
func (r *Registry) List(space, local string, keys ...string) *Registry {
	return r.Register(xml.Name{Space: space, Local: local}, Entry{Kind: tree.ListInstance, Keys: keys})
}

func (r *Registry) Lookup(space, local string) (Entry, bool) {
	e, ok := r.entries[xml.Name{Space: space, Local: local}]
	return e, ok
}

// Len delivers the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
