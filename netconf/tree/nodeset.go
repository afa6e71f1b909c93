package tree

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// NodeSet is an ordered collection of nodes that permits duplicates.
// The zero NodeSet is empty and ready to use.
type NodeSet struct {
	nodes []*Node
}

// NewNodeSet delivers a NodeSet holding nodes.
func NewNodeSet(nodes ...*Node) NodeSet {
	return NodeSet{nodes: append([]*Node(nil), nodes...)}
}

// Append adds nodes to the end of the set.
func (s *NodeSet) Append(nodes ...*Node) {
	s.nodes = append(s.nodes, nodes...)
}

// Nodes delivers the members of the set in insertion order.
func (s NodeSet) Nodes() []*Node {
	return append([]*Node(nil), s.nodes...)
}

// Each calls fn for each member of the set in insertion order.
func (s NodeSet) Each(fn func(i int, n *Node)) {
	for i, n := range s.nodes {
		fn(i, n)
	}
}

// First delivers the first member of the set.
func (s NodeSet) First() (*Node, error) {
	if len(s.nodes) == 0 {
		return nil, errors.WithStack(ErrEmptySet)
	}
	return s.nodes[0], nil
}

// IsEmpty reports whether the set has no members.
func (s NodeSet) IsEmpty() bool {
	return len(s.nodes) == 0
}

// Len delivers the number of members of the set.
func (s NodeSet) Len() int {
	return len(s.nodes)
}

// Filter delivers the members for which fn returns true.
func (s NodeSet) Filter(fn func(*Node) bool) NodeSet {
	var out NodeSet
	for _, n := range s.nodes {
		if fn(n) {
			out.Append(n)
		}
	}
	return out
}

// WriteXML writes every member, with its subtree, as sibling XML fragments.
func (s NodeSet) WriteXML(w io.Writer) error {
	for _, n := range s.nodes {
		if err := n.WriteXML(w); err != nil {
			return err
		}
	}
	return nil
}

// ToXML delivers the members as concatenated XML fragments.
func (s NodeSet) ToXML() (string, error) {
	var buf bytes.Buffer
	if err := s.WriteXML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
