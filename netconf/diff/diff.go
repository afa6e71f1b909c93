package diff

import (
	"fmt"
	"time"

	"github.com/damianoneill/nctree/netconf/leaf"
	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
)

// Result holds the outcome of comparing a before tree a with an after tree b. Members reference nodes
// of the compared trees, which are never modified.
type Result struct {
	// UniqueA holds the nodes of a that have no counterpart in b.
	UniqueA tree.NodeSet
	// UniqueB holds the nodes of b that have no counterpart in a.
	UniqueB tree.NodeSet
	// ChangedA holds the leaves of a whose value differs from their counterpart in b.
	ChangedA tree.NodeSet
	// ChangedB holds the counterparts in b of the members of ChangedA, in the same order.
	ChangedB tree.NodeSet
}

// Empty reports whether the compared trees hold the same content.
func (r *Result) Empty() bool {
	return r.UniqueA.IsEmpty() && r.UniqueB.IsEmpty() && r.ChangedA.IsEmpty() && r.ChangedB.IsEmpty()
}

func (r *Result) String() string {
	return fmt.Sprintf("uniqueA:%d uniqueB:%d changedA:%d changedB:%d",
		r.UniqueA.Len(), r.UniqueB.Len(), r.ChangedA.Len(), r.ChangedB.Len())
}

// Differ compares configuration trees. A Differ may be used concurrently.
type Differ struct {
	trace *Trace
}

// Option configures a Differ.
type Option func(*Differ)

// LoggingHooks defines a set of logging hooks to be used by the differ.
// Default value is DefaultLoggingHooks.
func LoggingHooks(trace *Trace) Option {
	return func(d *Differ) {
		d.trace = trace
	}
}

// New delivers a differ configured by opts.
func New(opts ...Option) *Differ {
	d := &Differ{trace: DefaultLoggingHooks}
	for _, opt := range opts {
		opt(d)
	}
	trace := *d.trace
	_ = mergo.Merge(&trace, NoOpLoggingHooks)
	d.trace = &trace
	return d
}

// Diff compares a and b using a differ configured by opts.
func Diff(a, b *tree.Node, opts ...Option) (*Result, error) {
	return New(opts...).Diff(a, b)
}

// Diff compares the before tree a with the after tree b, which are expected to be versions of the
// same container or list instance.
//
// Children are matched by identity, irrespective of their order. Children found on one side only are
// reported as unique, as are matched children of different kinds. Matched leaves whose values differ are
// reported as changed, and matched containers and list instances are compared recursively; containers
// are never reported as changed. Attributes take no part in the comparison.
//
// Where several siblings share an identity, as with leaf-list entries, identical content is matched
// first; remaining leaves are reported as unique and remaining containers are matched in document order.
func (d *Differ) Diff(a, b *tree.Node) (r *Result, err error) {
	d.trace.DiffStart(a, b)
	defer func(begin time.Time) {
		d.trace.DiffDone(a, b, r, err, time.Since(begin))
	}(time.Now())

	for _, n := range []*tree.Node{a, b} {
		switch {
		case n == nil:
			err = errors.Wrap(tree.ErrInvalidNode, "cannot diff a nil node")
		case n.IsLeaf():
			err = errors.Wrapf(tree.ErrInvalidNode, "cannot diff leaf %s", n.Name.Local)
		}
		if err != nil {
			d.trace.Error("Diff", err)
			return nil, err
		}
	}

	r = &Result{}
	r.children(a, b)
	return r, nil
}

func (r *Result) children(a, b *tree.Node) {
	ga, order := group(a.Children(), nil)
	gb, order := group(b.Children(), order)

	for _, id := range order {
		xs, ys := ga[id], gb[id]
		switch {
		case len(ys) == 0:
			r.UniqueA.Append(xs...)
		case len(xs) == 0:
			r.UniqueB.Append(ys...)
		case len(xs) == 1 && len(ys) == 1:
			r.pair(xs[0], ys[0])
		default:
			r.ambiguous(xs, ys)
		}
	}
}

func (r *Result) pair(x, y *tree.Node) {
	switch {
	case x.Kind() != y.Kind():
		r.UniqueA.Append(x)
		r.UniqueB.Append(y)
	case x.IsLeaf():
		if leaf.Compare(x.Value(), y.Value()) != 0 {
			r.ChangedA.Append(x)
			r.ChangedB.Append(y)
		}
	default:
		r.children(x, y)
	}
}

// ambiguous compares siblings that share an identity.
func (r *Result) ambiguous(xs, ys []*tree.Node) {
	used := make([]bool, len(ys))
	var restA, restB []*tree.Node
	for _, x := range xs {
		found := false
		for j, y := range ys {
			if !used[j] && tree.CompareContent(x, y) == 0 {
				used[j], found = true, true
				break
			}
		}
		if !found {
			restA = append(restA, x)
		}
	}
	for j, y := range ys {
		if !used[j] {
			restB = append(restB, y)
		}
	}

	restA = appendLeaves(&r.UniqueA, restA)
	restB = appendLeaves(&r.UniqueB, restB)
	for len(restA) > 0 && len(restB) > 0 {
		r.pair(restA[0], restB[0])
		restA, restB = restA[1:], restB[1:]
	}
	r.UniqueA.Append(restA...)
	r.UniqueB.Append(restB...)
}

// appendLeaves appends the leaves of nodes to s, delivering the remainder.
func appendLeaves(s *tree.NodeSet, nodes []*tree.Node) []*tree.Node {
	var rest []*tree.Node
	for _, n := range nodes {
		if n.IsLeaf() {
			s.Append(n)
		} else {
			rest = append(rest, n)
		}
	}
	return rest
}

// group indexes nodes by identity, extending order with identities not seen before.
func group(nodes []*tree.Node, order []string) (map[string][]*tree.Node, []string) {
	groups := map[string][]*tree.Node{}
	seen := map[string]bool{}
	for _, id := range order {
		seen[id] = true
	}
	for _, n := range nodes {
		id := n.Identity()
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
		groups[id] = append(groups[id], n)
	}
	return groups, order
}
