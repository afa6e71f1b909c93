package tree

import (
	"strings"

	"github.com/pkg/errors"
)

// Path expressions are child-axis steps separated by '/', relative to the node they are applied to:
//
//	interfaces/interface[name='eth0']/mtu
//
// A step is a local name, optionally prefixed (the prefix is not used for matching), or '*' for any
// name. List instances are selected with one or more [key='value'] predicates, compared with the
// value of the key leaf following the leaf value equality rules.

type predicate struct {
	key   string
	value string
}

type step struct {
	local      string
	predicates []predicate
}

func (s step) matches(n *Node) bool {
	if s.local != "*" && s.local != n.Name.Local {
		return false
	}
	for _, p := range s.predicates {
		k, err := n.Child(p.key)
		if err != nil || !k.IsLeaf() || !k.value.Equal(p.value) {
			return false
		}
	}
	return true
}

func parsePath(path string) ([]step, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "./")
	if path == "" {
		return nil, errors.Wrap(ErrInvalidPath, "empty path")
	}

	var steps []step
	for _, raw := range splitSteps(path) {
		s, err := parseStep(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "path %q", path)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// Splits on '/' outside of quoted predicate values.
func splitSteps(path string) []string {
	var (
		parts []string
		quote rune
		start int
	)
	for i, r := range path {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '/':
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}

func parseStep(raw string) (step, error) {
	name, rest := raw, ""
	if i := strings.IndexByte(raw, '['); i >= 0 {
		name, rest = raw[:i], raw[i:]
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || strings.ContainsAny(name, " ]'\"") {
		return step{}, errors.Wrapf(ErrInvalidPath, "invalid step %q", raw)
	}

	s := step{local: name}
	for rest != "" {
		p, remainder, err := parsePredicate(rest)
		if err != nil {
			return step{}, errors.Wrapf(err, "step %q", raw)
		}
		s.predicates = append(s.predicates, p)
		rest = remainder
	}
	return s, nil
}

// Parses a leading [key='value'] from s, delivering the remainder of s.
func parsePredicate(s string) (predicate, string, error) {
	eq := strings.IndexByte(s, '=')
	if s[0] != '[' || eq < 2 || eq+1 >= len(s) {
		return predicate{}, "", errors.Wrapf(ErrInvalidPath, "invalid predicate %q", s)
	}
	key := strings.TrimSpace(s[1:eq])
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	if key == "" || strings.ContainsAny(key, "[] ") {
		return predicate{}, "", errors.Wrapf(ErrInvalidPath, "invalid predicate key %q", s)
	}

	q := s[eq+1]
	if q != '\'' && q != '"' {
		return predicate{}, "", errors.Wrapf(ErrInvalidPath, "unquoted predicate value %q", s)
	}
	end := strings.IndexByte(s[eq+2:], q)
	if end < 0 {
		return predicate{}, "", errors.Wrapf(ErrInvalidPath, "unterminated predicate %q", s)
	}
	end += eq + 2
	if end+1 >= len(s) || s[end+1] != ']' {
		return predicate{}, "", errors.Wrapf(ErrInvalidPath, "unterminated predicate %q", s)
	}
	return predicate{key: key, value: s[eq+2 : end]}, s[end+2:], nil
}

type match struct {
	parent *Node
	node   *Node
}

func (n *Node) resolve(path string) ([]match, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	current := []match{{node: n}}
	for _, s := range steps {
		var next []match
		for _, m := range current {
			for _, c := range m.node.children {
				if s.matches(c) {
					next = append(next, match{parent: m.node, node: c})
				}
			}
		}
		current = next
	}
	return current, nil
}

// Find delivers the nodes reachable from n by the path expression, in document order.
func (n *Node) Find(path string) (NodeSet, error) {
	matches, err := n.resolve(path)
	if err != nil {
		return NodeSet{}, err
	}
	var s NodeSet
	for _, m := range matches {
		s.Append(m.node)
	}
	return s, nil
}

// Delete removes every node reachable from n by the path expression and delivers the number removed.
// ErrPathNotFound is returned, and the tree left untouched, if nothing matches.
func (n *Node) Delete(path string) (int, error) {
	matches, err := n.resolve(path)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, errors.Wrapf(ErrPathNotFound, "%s under %s", path, n.Name.Local)
	}
	for _, m := range matches {
		m.parent.RemoveChild(m.node)
	}
	return len(matches), nil
}

// Index maintains the parent of every node in a tree, so paths can be computed without nodes
// referring to their parents. The index must be rebuilt after the tree is modified.
type Index struct {
	root    *Node
	parents map[*Node]*Node
}

// NewIndex delivers the parent index of the tree rooted at root.
func NewIndex(root *Node) *Index {
	ix := &Index{root: root, parents: map[*Node]*Node{root: nil}}
	root.Walk(func(n *Node) bool {
		for _, c := range n.children {
			ix.parents[c] = n
		}
		return true
	})
	return ix
}

// Parent delivers the parent of n, which is nil for the root.
// ErrNotFound is returned if n is not part of the indexed tree.
func (ix *Index) Parent(n *Node) (*Node, error) {
	p, ok := ix.parents[n]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s is not in the tree", n.Name.Local)
	}
	return p, nil
}

// Path delivers the absolute path of n, starting with the root, with key predicates for list instances.
func (ix *Index) Path(n *Node) (string, error) {
	var steps []string
	for x := n; x != nil; {
		p, err := ix.Parent(x)
		if err != nil {
			return "", err
		}
		steps = append(steps, pathStep(x))
		x = p
	}

	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		sb.WriteString("/" + steps[i])
	}
	return sb.String(), nil
}

func pathStep(n *Node) string {
	s := n.Name.Local
	if n.Prefix != "" {
		s = n.Prefix + ":" + s
	}
	if n.kind != ListInstance {
		return s
	}
	for i, v := range n.KeyValues() {
		q := "'"
		if strings.Contains(v.String(), q) {
			q = `"`
		}
		s += "[" + n.keys[i] + "=" + q + v.String() + q + "]"
	}
	return s
}
