package tree

import (
	"cmp"
	"slices"
	"strings"

	"github.com/damianoneill/nctree/netconf/leaf"
)

// Compare delivers a total order over trees. Nodes compare by name, kind and list keys first, then
// by attributes, value and children. Child order and prefixes do not take part.
// Compare(a, b) == 0 when a and b are exactly equal.
func Compare(a, b *Node) int {
	return compare(a, b, true)
}

// CompareContent is like Compare but ignores attributes. Two containers whose content compares equal
// deliver an empty diff.
func CompareContent(a, b *Node) int {
	return compare(a, b, false)
}

// Equal reports whether a and b are exactly equal, including attributes and all descendant values.
func Equal(a, b *Node) bool {
	return Compare(a, b) == 0
}

// Match reports whether a and b are roughly equal: they have the same name, namespace and kind, and
// list instances have the same key values. Values and descendants may differ.
func Match(a, b *Node) bool {
	return compareIdentity(a, b) == 0
}

func compare(a, b *Node, attrs bool) int {
	if a == b {
		return 0
	}
	if a == nil || b == nil {
		if a == nil {
			return -1
		}
		return 1
	}

	if c := compareIdentity(a, b); c != 0 {
		return c
	}
	if attrs {
		if c := compareAttrs(a.Attrs, b.Attrs); c != 0 {
			return c
		}
	}
	if a.kind == Leaf {
		return leaf.Compare(a.value, b.value)
	}

	ac, bc := sortedChildren(a, attrs), sortedChildren(b, attrs)
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if c := compare(ac[i], bc[i], attrs); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ac), len(bc))
}

func compareIdentity(a, b *Node) int {
	if c := strings.Compare(a.Name.Space, b.Name.Space); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name.Local, b.Name.Local); c != 0 {
		return c
	}
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	if a.kind != ListInstance {
		return 0
	}
	if c := slices.Compare(a.keys, b.keys); c != 0 {
		return c
	}
	return slices.CompareFunc(a.KeyValues(), b.KeyValues(), leaf.Compare)
}

func compareAttrs(a, b []Attr) int {
	return slices.CompareFunc(sortedAttrs(a), sortedAttrs(b), func(x, y Attr) int {
		if c := strings.Compare(x.Name.Space, y.Name.Space); c != 0 {
			return c
		}
		if c := strings.Compare(x.Name.Local, y.Name.Local); c != 0 {
			return c
		}
		return strings.Compare(x.Value, y.Value)
	})
}

func sortedAttrs(attrs []Attr) []Attr {
	s := slices.Clone(attrs)
	slices.SortFunc(s, func(x, y Attr) int {
		if c := strings.Compare(x.Name.Space, y.Name.Space); c != 0 {
			return c
		}
		return strings.Compare(x.Name.Local, y.Name.Local)
	})
	return s
}

func sortedChildren(n *Node, attrs bool) []*Node {
	s := slices.Clone(n.children)
	slices.SortFunc(s, func(x, y *Node) int {
		return compare(x, y, attrs)
	})
	return s
}
