package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/damianoneill/nctree/netconf/leaf"
	"github.com/damianoneill/nctree/netconf/schema"
	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
)

// ErrParse is matched by every error delivered by a failed parse.
var ErrParse = errors.New("parse error")

// State identifies the position of the parser within the document.
type State int

const (
	// Idle is the state before the root element is opened.
	Idle State = iota
	// InElement is the state within an element, between child tokens.
	InElement
	// InAttribute is the state while the attributes of an open tag are resolved.
	InAttribute
	// InText is the state after character data within an element.
	InText
	// Done is the state after the root element is closed.
	Done
	// Error is the terminal state of a failed parse.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InElement:
		return "in-element"
	case InAttribute:
		return "in-attribute"
	case InText:
		return "in-text"
	case Done:
		return "done"
	case Error:
		return "error"
	}
	return fmt.Sprintf("unrecognised state %d", int(s))
}

// ParseError reports a failed parse and the stream position at which it failed.
type ParseError struct {
	Line   int
	Column int
	Offset int64
	// State is the parser state in which the failure was detected.
	State State
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d column %d (offset %d, %s): %v", e.Line, e.Column, e.Offset, e.State, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Parser builds configuration trees from XML documents. A Parser holds no per-document state and may be
// used concurrently.
type Parser struct {
	config Config
	trace  *Trace
}

// New delivers a parser configured by opts.
func New(opts ...Option) *Parser {
	p := &Parser{trace: DefaultLoggingHooks}
	for _, opt := range opts {
		opt(p)
	}
	_ = mergo.Merge(&p.config, DefaultConfig)

	// Fill any nil hooks with no-op functions, leaving the supplied hooks untouched.
	trace := *p.trace
	_ = mergo.Merge(&trace, NoOpLoggingHooks)
	p.trace = &trace
	return p
}

// Parse reads a single XML document from r and delivers its root element as a tree.
func (p *Parser) Parse(r io.Reader) (root *tree.Node, err error) {
	m := &machine{
		dec:    xml.NewDecoder(r),
		config: &p.config,
	}
	m.dec.Strict = true

	p.trace.ParseStart()
	defer func(begin time.Time) {
		p.trace.ParseDone(root, m.elements, err, time.Since(begin))
	}(time.Now())

	root, err = m.run()
	if err != nil {
		p.trace.Error("Parse", err)
	}
	return root, err
}

// ParseBytes parses the document held by b.
func (p *Parser) ParseBytes(b []byte) (*tree.Node, error) {
	return p.Parse(bytes.NewReader(b))
}

// ParseString parses the document held by s.
func (p *Parser) ParseString(s string) (*tree.Node, error) {
	return p.Parse(strings.NewReader(s))
}

// ParseData parses a NETCONF data payload. A <data> root, or a <data> element beneath an <rpc-reply> root,
// delivers its children; any other root is delivered on its own.
func (p *Parser) ParseData(r io.Reader) (tree.NodeSet, error) {
	root, err := p.Parse(r)
	if err != nil {
		return tree.NodeSet{}, err
	}

	if root.Name.Local == "rpc-reply" {
		data, err := root.ChildNS(xml.Name{Space: root.Name.Space, Local: "data"})
		if err != nil {
			return tree.NodeSet{}, errors.Wrap(err, "reply carries no data")
		}
		root = data
	}
	if root.Name.Local != "data" {
		return tree.NewNodeSet(root), nil
	}
	return tree.NewNodeSet(root.Children()...), nil
}

// Parse reads a document using a parser with default configuration.
func Parse(r io.Reader) (*tree.Node, error) {
	return New().Parse(r)
}

// frame is the context of an open element.
type frame struct {
	raw      xml.Name // as written, for end tag matching
	name     xml.Name
	attrs    []tree.Attr
	scope    *nsScope
	text     strings.Builder
	children []*tree.Node

	entry schema.Entry
	known bool
}

// machine holds the state of a single parse.
type machine struct {
	dec      *xml.Decoder
	config   *Config
	state    State
	stack    []*frame
	root     *tree.Node
	elements int
}

func (m *machine) run() (*tree.Node, error) {
	for {
		tok, err := m.dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, m.fail(err)
		}
		if err = m.token(tok); err != nil {
			return nil, m.fail(err)
		}
	}

	switch {
	case len(m.stack) > 0:
		return nil, m.fail(errors.Errorf("document ended with %d unclosed elements", len(m.stack)))
	case m.root == nil:
		return nil, m.fail(errors.New("document has no root element"))
	}
	return m.root, nil
}

// fail moves the machine to the Error state and decorates err with the current position.
func (m *machine) fail(err error) error {
	line, column := m.dec.InputPos()
	pe := &ParseError{Line: line, Column: column, Offset: m.dec.InputOffset(), State: m.state, Err: err}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		pe.Line = se.Line
	}
	m.state = Error
	return pe
}

func (m *machine) token(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return m.start(t)
	case xml.EndElement:
		return m.end(t)
	case xml.CharData:
		return m.chars(t)
	}
	// comments, processing instructions and directives carry no configuration
	return nil
}

func (m *machine) top() *frame {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *machine) start(t xml.StartElement) error {
	switch {
	case m.state == Done:
		return errors.Errorf("second top-level element <%s>", qualified(t.Name))
	case len(m.stack) >= m.config.MaxDepth:
		return errors.Errorf("element <%s> exceeds maximum depth %d", qualified(t.Name), m.config.MaxDepth)
	case m.elements >= m.config.MaxElements:
		return errors.Errorf("document exceeds maximum of %d elements", m.config.MaxElements)
	}
	m.elements++

	parent := m.top()
	outer := rootScope
	if parent != nil {
		outer = parent.scope
		if parent.known && parent.entry.Kind == tree.Leaf {
			return errors.Errorf("leaf <%s> cannot contain element <%s>", qualified(parent.raw), qualified(t.Name))
		}
	}

	m.state = InAttribute
	f, err := m.open(t, outer)
	if err != nil {
		return err
	}
	if m.config.Schema != nil {
		f.entry, f.known = m.config.Schema.Lookup(f.name.Space, f.name.Local)
	}

	m.stack = append(m.stack, f)
	m.state = InElement
	return nil
}

// open resolves the namespace declarations, name and attributes of an open tag.
func (m *machine) open(t xml.StartElement, outer *nsScope) (*frame, error) {
	sc := &nsScope{parent: outer, def: outer.def}
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			if err := sc.bind(a.Name.Local, a.Value); err != nil {
				return nil, err
			}
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			sc.def = a.Value
		}
	}

	space, err := sc.resolve(t.Name.Space, true)
	if err != nil {
		return nil, errors.Wrapf(err, "element <%s>", qualified(t.Name))
	}
	f := &frame{raw: t.Name, name: xml.Name{Space: space, Local: t.Name.Local}, scope: sc}

	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		space, err := sc.resolve(a.Name.Space, false)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s of <%s>", qualified(a.Name), qualified(t.Name))
		}
		f.attrs = append(f.attrs, tree.Attr{
			Name:   xml.Name{Space: space, Local: a.Name.Local},
			Prefix: a.Name.Space,
			Value:  a.Value,
		})
	}
	return f, nil
}

func (m *machine) chars(t xml.CharData) error {
	f := m.top()
	if f == nil {
		if len(bytes.TrimSpace(t)) > 0 {
			return errors.New("character data outside the root element")
		}
		return nil
	}
	f.text.Write(t)
	m.state = InText
	return nil
}

func (m *machine) end(t xml.EndElement) error {
	f := m.top()
	if f == nil {
		return errors.Errorf("unexpected end element </%s>", qualified(t.Name))
	}
	if t.Name != f.raw {
		return errors.Errorf("element <%s> closed by </%s>", qualified(f.raw), qualified(t.Name))
	}
	m.stack = m.stack[:len(m.stack)-1]

	n, err := m.build(f)
	if err != nil {
		return err
	}

	if parent := m.top(); parent != nil {
		parent.children = append(parent.children, n)
		m.state = InElement
		return nil
	}
	m.root = n
	m.state = Done
	return nil
}

// build constructs the node for a closed element.
func (m *machine) build(f *frame) (*tree.Node, error) {
	kind := tree.Leaf
	switch {
	case f.known:
		kind = f.entry.Kind
	case len(f.children) > 0:
		kind = tree.Container
	}

	var n *tree.Node
	text := f.text.String()
	switch kind {
	case tree.Leaf:
		typ := leaf.StringType
		if f.known {
			typ = f.entry.Type
		} else {
			text = strings.TrimSpace(text)
		}
		v, err := leaf.Parse(typ, text)
		if err != nil {
			return nil, errors.Wrapf(err, "leaf <%s>", qualified(f.raw))
		}
		n = tree.NewLeaf(f.name, v)
	case tree.ListInstance:
		n = tree.NewListInstance(f.name, f.entry.Keys...)
	default:
		n = tree.NewContainer(f.name)
	}

	if kind != tree.Leaf && strings.TrimSpace(text) != "" {
		return nil, errors.Errorf("%s <%s> contains character data", kind, qualified(f.raw))
	}

	n.Prefix = f.raw.Space
	n.Attrs = f.attrs
	for _, c := range f.children {
		if err := n.AddChild(c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
