package diff

import (
	"github.com/damianoneill/nctree/netconf/common"
	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/pkg/errors"
)

// EditConfig delivers the configuration that transforms a into b, where r is the result of comparing them.
// See BuildEdit.
func (r *Result) EditConfig(a, b *tree.Node) (*tree.Node, error) {
	return BuildEdit(a, b, r)
}

// BuildEdit delivers the body of an edit-config request that, merged into a datastore holding a,
// leaves it holding b. The body is rooted at a copy of the root of b; its ancestors of each difference
// are copied without their content, list instances with their keys. Members of UniqueB and ChangedB are
// copied in full; members of UniqueA are reduced to their identity and marked for deletion.
//
// r must hold nodes of a and b, as delivered by Diff.
func BuildEdit(a, b *tree.Node, r *Result) (*tree.Node, error) {
	if a == nil || b == nil || r == nil {
		return nil, errors.Wrap(tree.ErrInvalidNode, "cannot build an edit from nil input")
	}
	edit := skeleton(b)

	before := tree.NewIndex(a)
	var err error
	r.UniqueA.Each(func(i int, n *tree.Node) {
		if err == nil {
			err = place(edit, before, n, deletion(n))
		}
	})

	after := tree.NewIndex(b)
	for _, s := range []tree.NodeSet{r.UniqueB, r.ChangedB} {
		s.Each(func(i int, n *tree.Node) {
			if err == nil {
				err = place(edit, after, n, n.Clone())
			}
		})
	}
	if err != nil {
		return nil, err
	}
	return edit, nil
}

// place adds payload to edit beneath copies of the ancestors of n.
func place(edit *tree.Node, index *tree.Index, n, payload *tree.Node) error {
	p, err := index.Parent(n)
	if err != nil {
		return errors.Wrapf(err, "%s is not part of the compared trees", n.Name.Local)
	}
	var ancestors []*tree.Node
	for p != nil {
		grandparent, _ := index.Parent(p)
		if grandparent == nil {
			// p is the root, represented by edit
			break
		}
		ancestors = append(ancestors, p)
		p = grandparent
	}

	cur := edit
	for i := len(ancestors) - 1; i >= 0; i-- {
		cur = descend(cur, ancestors[i])
	}
	return cur.AddChild(payload)
}

// descend delivers the child of cur standing for the ancestor p, adding it when missing.
func descend(cur, p *tree.Node) *tree.Node {
	id := p.Identity()
	for _, c := range cur.Children() {
		if _, marked := c.Attr(common.NameOperation); !marked && c.Kind() == p.Kind() && c.Identity() == id {
			return c
		}
	}
	c := skeleton(p)
	_ = cur.AddChild(c)
	return c
}

// skeleton copies a container or list instance without its content. List instances keep their key leaves.
func skeleton(n *tree.Node) *tree.Node {
	var s *tree.Node
	switch n.Kind() {
	case tree.ListInstance:
		s = tree.NewListInstance(n.Name, n.Keys()...)
		for _, k := range n.Keys() {
			if c, err := n.Child(k); err == nil {
				_ = s.AddChild(c.Clone())
			}
		}
	case tree.Leaf:
		s = tree.NewLeaf(n.Name, n.Value())
	default:
		s = tree.NewContainer(n.Name)
	}
	s.Prefix = n.Prefix
	return s
}

// deletion delivers the identity of n marked for deletion.
func deletion(n *tree.Node) *tree.Node {
	d := skeleton(n)
	d.Attrs = append(d.Attrs, tree.Attr{Name: common.NameOperation, Prefix: common.NetconfPrefix, Value: common.DeleteOperation})
	return d
}
