package tree

import (
	"encoding/xml"
	"errors"
	"testing"

	"github.com/damianoneill/nctree/netconf/leaf"

	assert "github.com/stretchr/testify/require"
)

func TestToXML(t *testing.T) {
	tests := []struct {
		name string
		node func() *Node
		want string
	}{
		{
			"Leaf",
			func() *Node { return strLeaf("a", "x") },
			`<a xmlns="urn:example:test">x</a>`,
		},
		{
			"NestedSameNamespace",
			func() *Node { return container("b", container("a", strLeaf("leaf", "x"))) },
			`<b xmlns="urn:example:test"><a><leaf>x</leaf></a></b>`,
		},
		{
			"EmptyContainer",
			func() *Node { return NewContainer(qn("c")) },
			`<c xmlns="urn:example:test"/>`,
		},
		{
			"UnsetLeaf",
			func() *Node { return NewLeaf(qn("filter"), leaf.Value{}) },
			`<filter xmlns="urn:example:test"/>`,
		},
		{
			"NoNamespace",
			func() *Node { return NewLeaf(xml.Name{Local: "a"}, leaf.MustParse(leaf.Int8Type, "7")) },
			`<a>7</a>`,
		},
		{
			"NamespaceChange",
			func() *Node {
				c := container("top", NewLeaf(xml.Name{Space: "urn:other", Local: "x"}, leaf.MustParse(leaf.StringType, "1")))
				_ = c.AddChild(NewLeaf(xml.Name{Local: "y"}, leaf.MustParse(leaf.StringType, "2")))
				return c
			},
			`<top xmlns="urn:example:test"><x xmlns="urn:other">1</x><y xmlns="">2</y></top>`,
		},
		{
			"Prefixed",
			func() *Node {
				c := container("top", strLeaf("a", "1"))
				c.Prefix = "t"
				a, _ := c.Child("a")
				a.Prefix = "t"
				return c
			},
			`<t:top xmlns:t="urn:example:test"><t:a>1</t:a></t:top>`,
		},
		{
			"Escaping",
			func() *Node {
				l := strLeaf("a", `<&>`)
				l.SetAttr(xml.Name{Local: "note"}, `"q"`)
				return l
			},
			`<a xmlns="urn:example:test" note="&#34;q&#34;">&lt;&amp;&gt;</a>`,
		},
		{
			"NamespacedAttribute",
			func() *Node {
				l := strLeaf("a", "1")
				l.Attrs = append(l.Attrs, Attr{Name: xml.Name{Space: "urn:ietf:params:xml:ns:netconf:base:1.0", Local: "operation"}, Prefix: "nc", Value: "delete"})
				return l
			},
			`<a xmlns="urn:example:test" xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0" nc:operation="delete">1</a>`,
		},
		{
			"GeneratedAttributePrefix",
			func() *Node {
				l := strLeaf("a", "1")
				l.SetAttr(xml.Name{Space: "urn:meta", Local: "m"}, "v")
				return l
			},
			`<a xmlns="urn:example:test" xmlns:ns0="urn:meta" ns0:m="v">1</a>`,
		},
		{
			"AttributePrefixBoundByElement",
			func() *Node {
				c := strLeaf("child", "x")
				c.Prefix = "p"
				c.Attrs = append(c.Attrs, Attr{Name: xml.Name{Space: "urn:other", Local: "meta"}, Prefix: "p", Value: "1"})
				root := container("root", c)
				root.Prefix = "p"
				return root
			},
			`<p:root xmlns:p="urn:example:test"><p:child xmlns:ns0="urn:other" ns0:meta="1">x</p:child></p:root>`,
		},
		{
			"XMLAttribute",
			func() *Node {
				l := strLeaf("a", "1")
				l.SetAttr(xml.Name{Space: XMLNamespace, Local: "lang"}, "en")
				return l
			},
			`<a xmlns="urn:example:test" xml:lang="en">1</a>`,
		},
	}
	//nolint: scopelint
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.node().ToXML()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestWriteXMLFailure(t *testing.T) {
	err := container("root", strLeaf("a", "1")).WriteXML(failingWriter{})
	assert.Error(t, err)
}

func TestWriteXMLKeepsElementNamespace(t *testing.T) {
	child := strLeaf("child", "x")
	child.Prefix = "p"
	child.Attrs = append(child.Attrs, Attr{Name: xml.Name{Space: "urn:other", Local: "meta"}, Prefix: "p", Value: "1"})
	root := container("root", child)
	root.Prefix = "p"

	out, err := root.ToXML()
	assert.NoError(t, err)

	var decoded struct {
		XMLName xml.Name
		Child   struct {
			XMLName xml.Name
			Attrs   []xml.Attr `xml:",any,attr"`
		} `xml:",any"`
	}
	assert.NoError(t, xml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, qn("child"), decoded.Child.XMLName)

	var meta []xml.Name
	for _, a := range decoded.Child.Attrs {
		if a.Name.Space != "xmlns" {
			meta = append(meta, a.Name)
		}
	}
	assert.Equal(t, []xml.Name{{Space: "urn:other", Local: "meta"}}, meta)
}
