package tree

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// XMLNamespace is the namespace bound to the reserved xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Namespace declarations in scope while writing an element.
type scope struct {
	parent    *scope
	defaultNS string
	prefixes  map[string]string
}

func (s *scope) lookup(prefix string) (string, bool) {
	for x := s; x != nil; x = x.parent {
		if ns, ok := x.prefixes[prefix]; ok {
			return ns, true
		}
	}
	return "", false
}

func (s *scope) prefixFor(ns string) (string, bool) {
	for x := s; x != nil; x = x.parent {
		for p, u := range x.prefixes {
			if u != ns {
				continue
			}
			// Only usable if not shadowed by a nearer declaration.
			if bound, _ := s.lookup(p); bound == ns {
				return p, true
			}
		}
	}
	return "", false
}

func (s *scope) declare(prefix, ns string) {
	if s.prefixes == nil {
		s.prefixes = map[string]string{}
	}
	s.prefixes[prefix] = ns
}

type xmlWriter struct {
	w   *bufio.Writer
	err error
	gen int
}

func (x *xmlWriter) str(s string) {
	if x.err == nil {
		_, x.err = x.w.WriteString(s)
	}
}

func (x *xmlWriter) escaped(s string) {
	if x.err == nil {
		x.err = xml.EscapeText(x.w, []byte(s))
	}
}

// WriteXML writes n and its subtree as an XML fragment. Namespaces are declared on the outermost
// element that needs them; prefixes are preserved. An unset leaf is written as an empty element.
func (n *Node) WriteXML(w io.Writer) error {
	x := &xmlWriter{w: bufio.NewWriter(w)}
	x.element(n, &scope{})
	if x.err != nil {
		return x.err
	}
	return x.w.Flush()
}

// ToXML delivers n and its subtree as an XML fragment.
func (n *Node) ToXML() (string, error) {
	var buf bytes.Buffer
	if err := n.WriteXML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (x *xmlWriter) element(n *Node, parent *scope) {
	s := &scope{parent: parent, defaultNS: parent.defaultNS}
	var decls []Attr

	qname := n.Name.Local
	if n.Prefix != "" {
		qname = n.Prefix + ":" + qname
		if ns, _ := s.lookup(n.Prefix); ns != n.Name.Space {
			s.declare(n.Prefix, n.Name.Space)
			decls = append(decls, Attr{Name: xml.Name{Space: "xmlns", Local: n.Prefix}, Value: n.Name.Space})
		}
	} else if n.Name.Space != s.defaultNS {
		s.defaultNS = n.Name.Space
		decls = append(decls, Attr{Name: xml.Name{Local: "xmlns"}, Value: n.Name.Space})
	}

	attrs := make([]string, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		name := a.Name.Local
		if a.Name.Space != "" {
			prefix := x.attrPrefix(a, n.Prefix, s, &decls)
			name = prefix + ":" + name
		}
		attrs = append(attrs, name)
	}

	x.str("<" + qname)
	for _, d := range decls {
		if d.Name.Space == "xmlns" {
			x.str(" xmlns:" + d.Name.Local + `="`)
		} else {
			x.str(` xmlns="`)
		}
		x.escaped(d.Value)
		x.str(`"`)
	}
	for i, a := range n.Attrs {
		x.str(" " + attrs[i] + `="`)
		x.escaped(a.Value)
		x.str(`"`)
	}

	text := ""
	if n.kind == Leaf && n.value.IsSet() {
		text = n.value.String()
	}
	if text == "" && len(n.children) == 0 {
		x.str("/>")
		return
	}

	x.str(">")
	x.escaped(text)
	for _, c := range n.children {
		x.element(c, s)
	}
	x.str("</" + qname + ">")
}

// Delivers the prefix to use for a namespaced attribute, declaring one if needed.
// own is the prefix of the element carrying the attribute and cannot be rebound on it.
func (x *xmlWriter) attrPrefix(a Attr, own string, s *scope, decls *[]Attr) string {
	if a.Name.Space == XMLNamespace {
		return "xml"
	}
	if a.Prefix != "" {
		if ns, ok := s.lookup(a.Prefix); ok && ns == a.Name.Space {
			return a.Prefix
		}
		if _, taken := s.prefixes[a.Prefix]; !taken && a.Prefix != own {
			s.declare(a.Prefix, a.Name.Space)
			*decls = append(*decls, Attr{Name: xml.Name{Space: "xmlns", Local: a.Prefix}, Value: a.Name.Space})
			return a.Prefix
		}
	}
	if p, ok := s.prefixFor(a.Name.Space); ok {
		return p
	}

	var prefix string
	for {
		prefix = fmt.Sprintf("ns%d", x.gen)
		x.gen++
		if _, ok := s.lookup(prefix); !ok {
			break
		}
	}
	s.declare(prefix, a.Name.Space)
	*decls = append(*decls, Attr{Name: xml.Name{Space: "xmlns", Local: prefix}, Value: a.Name.Space})
	return prefix
}
