package tree

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/damianoneill/nctree/netconf/leaf"

	"github.com/pkg/errors"
)

// Defines the in-memory representation of hierarchical configuration data.

var (
	// ErrInvalidNode reports a structural operation attempted on the wrong kind of node.
	ErrInvalidNode = errors.New("invalid node")

	// ErrNotFound reports a child lookup that found nothing.
	ErrNotFound = errors.New("not found")

	// ErrPathNotFound reports a path expression that matched no node.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidPath reports a path expression that cannot be parsed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrEmptySet reports first-element access on an empty NodeSet.
	ErrEmptySet = errors.New("empty node set")
)

// Kind distinguishes the node variants.
type Kind int

const (
	Leaf Kind = iota
	Container
	ListInstance
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Container:
		return "container"
	case ListInstance:
		return "list"
	}
	return fmt.Sprintf("unrecognised kind %d", int(k))
}

// Attr is an attribute carried by a node. Name.Space holds the namespace URI, Prefix the
// prefix it was written with, if any.
type Attr struct {
	Name   xml.Name
	Prefix string
	Value  string
}

// Node is a leaf, container or list instance in a configuration tree.
// Name.Space holds the namespace URI of the node. A node exclusively owns its children;
// use Clone to place a copy of a subtree in another tree.
type Node struct {
	Name   xml.Name
	Prefix string
	Attrs  []Attr

	kind     Kind
	value    leaf.Value
	keys     []string
	children []*Node
}

// NewLeaf delivers a leaf node holding v.
func NewLeaf(name xml.Name, v leaf.Value) *Node {
	return &Node{Name: name, kind: Leaf, value: v}
}

// NewContainer delivers an empty container node.
func NewContainer(name xml.Name) *Node {
	return &Node{Name: name, kind: Container}
}

// NewListInstance delivers an empty list instance, identified among its siblings by the values
// of the named key leaves.
func NewListInstance(name xml.Name, keys ...string) *Node {
	return &Node{Name: name, kind: ListInstance, keys: append([]string(nil), keys...)}
}

// Kind delivers the kind of the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool {
	return n.kind == Leaf
}

// Value delivers the value of a leaf; the zero Value for other kinds.
func (n *Node) Value() leaf.Value {
	return n.value
}

// SetValue replaces the value of a leaf after checking it.
// Nodes hold no parent link, so setting a key leaf of a list instance is not checked against the
// siblings of that instance; the caller keeps list identities unique. AddChild checks them.
func (n *Node) SetValue(v leaf.Value) error {
	if n.kind != Leaf {
		return errors.Wrapf(ErrInvalidNode, "cannot set value of %s %s", n.kind, n.Name.Local)
	}
	if err := v.Check(); err != nil {
		return err
	}
	n.value = v
	return nil
}

// Keys delivers the names of the key leaves of a list instance.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

// KeyValues delivers the values of the key leaves of a list instance, in key order.
// A missing key leaf delivers the zero Value.
func (n *Node) KeyValues() []leaf.Value {
	values := make([]leaf.Value, len(n.keys))
	for i, k := range n.keys {
		if c, err := n.Child(k); err == nil {
			values[i] = c.value
		}
	}
	return values
}

// Children delivers the children of n in insertion order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Len delivers the number of children of n.
func (n *Node) Len() int {
	return len(n.children)
}

// AddChild appends c to the children of n. The children of n are left untouched on failure.
func (n *Node) AddChild(c *Node) error {
	switch {
	case c == nil:
		return errors.Wrapf(ErrInvalidNode, "nil child for %s", n.Name.Local)
	case n.kind == Leaf:
		return errors.Wrapf(ErrInvalidNode, "cannot add %s to leaf %s", c.Name.Local, n.Name.Local)
	case c.contains(n):
		return errors.Wrapf(ErrInvalidNode, "adding %s to %s would create a cycle", c.Name.Local, n.Name.Local)
	}

	if c.kind == ListInstance {
		id := c.Identity()
		for _, s := range n.children {
			if s.kind == ListInstance && s.Identity() == id {
				return errors.Wrapf(ErrInvalidNode, "duplicate list instance %s", id)
			}
		}
	}

	n.children = append(n.children, c)
	return nil
}

// RemoveChild removes c from the children of n, reporting whether it was found.
func (n *Node) RemoveChild(c *Node) bool {
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

// Child delivers the first child of n with the local name in the namespace of n.
func (n *Node) Child(local string) (*Node, error) {
	return n.ChildNS(xml.Name{Space: n.Name.Space, Local: local})
}

// ChildNS delivers the first child of n with the name.
func (n *Node) ChildNS(name xml.Name) (*Node, error) {
	for _, c := range n.children {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "%s has no child %s", n.Name.Local, name.Local)
}

// Attr delivers the value of the attribute with the name.
func (n *Node) Attr(name xml.Name) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr adds the attribute or replaces the value of an existing attribute with the same name.
func (n *Node) SetAttr(name xml.Name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Identity delivers the key that identifies n among its siblings: the name for leaves and
// containers, the name and key leaf values for list instances.
func (n *Node) Identity() string {
	id := "{" + n.Name.Space + "}" + n.Name.Local
	if n.kind != ListInstance {
		return id
	}
	var sb strings.Builder
	sb.WriteString(id)
	for i, v := range n.KeyValues() {
		sb.WriteString("[" + n.keys[i] + "=" + strconv.Quote(v.Key()) + "]")
	}
	return sb.String()
}

// Clone delivers a deep copy of n, its attributes and its subtree.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:   n.Name,
		Prefix: n.Prefix,
		kind:   n.kind,
		value:  n.value,
	}
	if n.Attrs != nil {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if n.keys != nil {
		c.keys = append([]string(nil), n.keys...)
	}
	if n.children != nil {
		c.children = make([]*Node, len(n.children))
		for i, x := range n.children {
			c.children[i] = x.Clone()
		}
	}
	return c
}

// Walk visits n and its descendants depth first. The children of a node are skipped when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) contains(x *Node) bool {
	found := false
	n.Walk(func(c *Node) bool {
		found = found || c == x
		return !found
	})
	return found
}

func (n *Node) String() string {
	if n.kind == Leaf {
		return fmt.Sprintf("%s=%s", n.Name.Local, n.value)
	}
	return fmt.Sprintf("%s(%d)", n.Identity(), len(n.children))
}
