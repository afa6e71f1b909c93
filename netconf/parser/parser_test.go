package parser

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damianoneill/nctree/netconf/leaf"
	"github.com/damianoneill/nctree/netconf/mocks"
	"github.com/damianoneill/nctree/netconf/schema"
	"github.com/damianoneill/nctree/netconf/tree"
	"github.com/golang/mock/gomock"

	assert "github.com/stretchr/testify/require"
)

const (
	testNS = "urn:example:test"
	ifNS   = "urn:ietf:params:xml:ns:yang:ietf-interfaces"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Leaf", `<a xmlns="urn:example:test">x</a>`},
		{"Nested", `<b xmlns="urn:example:test"><a><leaf>x</leaf></a></b>`},
		{"Prefixed", `<t:top xmlns:t="urn:example:test"><t:a>1</t:a></t:top>`},
		{"NamespaceChange", `<top xmlns="urn:example:test"><x xmlns="urn:other">1</x><y xmlns="">2</y></top>`},
		{"NamespacedAttribute", `<a xmlns="urn:example:test" xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0" nc:operation="delete">1</a>`},
		{"XMLAttribute", `<a xmlns="urn:example:test" xml:lang="en">1</a>`},
		{"EmptyLeaf", `<c xmlns="urn:example:test"/>`},
	}
	//nolint: scopelint
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := New().ParseString(tt.doc)
			assert.NoError(t, err)

			out, err := root.ToXML()
			assert.NoError(t, err)
			assert.Equal(t, tt.doc, out)
		})
	}
}

func TestParseInfersKinds(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!-- running configuration -->
<system xmlns="urn:example:test">
  <hostname>  router-1  </hostname>
  <ntp>
    <server>10.0.0.1</server>
    <server>10.0.0.2</server>
  </ntp>
  <banner/>
</system>
`
	root, err := New().ParseString(doc)
	assert.NoError(t, err)
	assert.Equal(t, xml.Name{Space: testNS, Local: "system"}, root.Name)
	assert.Equal(t, tree.Container, root.Kind())
	assert.Equal(t, 3, root.Len())

	hostname, err := root.Child("hostname")
	assert.NoError(t, err)
	assert.Equal(t, tree.Leaf, hostname.Kind())
	assert.True(t, hostname.Value().Equal("router-1"), "inferred leaves are trimmed")

	servers, err := root.Find("ntp/server")
	assert.NoError(t, err)
	assert.Equal(t, 2, servers.Len())

	banner, err := root.Child("banner")
	assert.NoError(t, err)
	assert.True(t, banner.IsLeaf())
	assert.True(t, banner.Value().Equal(""))
}

func TestParseAttributes(t *testing.T) {
	root, err := New().ParseString(`<a xmlns="urn:example:test" xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0" nc:operation="replace" id="7"/>`)
	assert.NoError(t, err)

	assert.Len(t, root.Attrs, 2, "namespace declarations are not attributes")
	v, ok := root.Attr(xml.Name{Space: "urn:ietf:params:xml:ns:netconf:base:1.0", Local: "operation"})
	assert.True(t, ok)
	assert.Equal(t, "replace", v)
	assert.Equal(t, "nc", root.Attrs[0].Prefix)

	v, ok = root.Attr(xml.Name{Local: "id"})
	assert.True(t, ok, "unprefixed attributes have no namespace")
	assert.Equal(t, "7", v)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		opts  []Option
		state State
		msg   string
	}{
		{"Empty", "", nil, Idle, "no root element"},
		{"OnlyWhitespace", "  \n ", nil, Idle, "no root element"},
		{"MultipleRoots", "<a/><b/>", nil, Done, "second top-level element <b>"},
		{"MismatchedEnd", "<a></b>", nil, InElement, "element <a> closed by </b>"},
		{"Unclosed", "<a><b></b>", nil, InElement, "1 unclosed elements"},
		{"UndeclaredElementPrefix", "<p:a/>", nil, InAttribute, "undeclared namespace prefix p"},
		{"UndeclaredAttributePrefix", `<a p:x="1"/>`, nil, InAttribute, "undeclared namespace prefix p"},
		{"EmptyPrefixBinding", `<p:a xmlns:p=""/>`, nil, InAttribute, "bound to an empty namespace"},
		{"TextBeforeRoot", "text<a/>", nil, Idle, "character data outside the root element"},
		{"TextAfterRoot", "<a/>text", nil, Done, "character data outside the root element"},
		{"MixedContent", "<a><b/>x</a>", nil, InText, "container <a> contains character data"},
		{"Syntax", "<a x=1/>", nil, Idle, "syntax error"},
		{"Depth", "<a><b><c/></b></a>", []Option{MaxDepth(2)}, InElement, "exceeds maximum depth 2"},
		{"Elements", "<a><b/><c/></a>", []Option{MaxElements(2)}, InElement, "maximum of 2 elements"},
	}
	//nolint: scopelint
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := New(append(tt.opts, LoggingHooks(NoOpLoggingHooks))...).ParseString(tt.doc)
			assert.Nil(t, root)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.state, pe.State)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := New(LoggingHooks(NoOpLoggingHooks)).ParseString("<a>\n  <b></c>\n</a>")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Greater(t, pe.Column, 1)
	assert.Equal(t, int64(len("<a>\n  <b></c>")), pe.Offset)
}

func interfacesSchema(t *testing.T) *mocks.MockLookup {
	mockCtrl := gomock.NewController(t)
	lookup := mocks.NewMockLookup(mockCtrl)

	reg := schema.NewRegistry().
		Container(ifNS, "interfaces").
		List(ifNS, "interface", "name").
		Leaf(ifNS, "name", leaf.StringType).
		Leaf(ifNS, "mtu", leaf.Uint16Type).
		Leaf(ifNS, "enabled", leaf.BooleanType).
		Leaf(ifNS, "description", leaf.StringType)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(reg.Lookup).AnyTimes()
	return lookup
}

func TestParseWithSchema(t *testing.T) {
	doc := `<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces">
  <interface>
    <name>eth0</name>
    <mtu> 1500 </mtu>
    <enabled>true</enabled>
    <description>  uplink </description>
  </interface>
  <interface>
    <name>eth1</name>
    <mtu>+09000</mtu>
    <description/>
  </interface>
</interfaces>`

	root, err := New(WithSchema(interfacesSchema(t))).ParseString(doc)
	assert.NoError(t, err)
	assert.Equal(t, tree.Container, root.Kind())

	instances := root.Children()
	assert.Len(t, instances, 2)
	for _, n := range instances {
		assert.Equal(t, tree.ListInstance, n.Kind())
		assert.Equal(t, []string{"name"}, n.Keys())
	}
	assert.NotEqual(t, instances[0].Identity(), instances[1].Identity())

	mtu, err := root.Find("interface[name='eth1']/mtu")
	assert.NoError(t, err)
	n, err := mtu.First()
	assert.NoError(t, err)
	assert.Equal(t, leaf.Uint16, n.Value().Type().Base)
	assert.True(t, n.Value().Equal(9000))

	desc, err := root.Find("interface[name='eth0']/description")
	assert.NoError(t, err)
	n, _ = desc.First()
	assert.True(t, n.Value().Equal("  uplink "), "schema strings keep their text")

	enabled, err := root.Find("interface[name='eth0']/enabled")
	assert.NoError(t, err)
	n, _ = enabled.First()
	assert.Equal(t, true, n.Value().Native())
}

func TestParseWithSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
		msg    string
	}{
		{
			"InvalidLeaf",
			`<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces"><interface><name>eth0</name><mtu>big</mtu></interface></interfaces>`,
			leaf.ErrInvalidValue,
			"leaf <mtu>",
		},
		{
			"OutOfRange",
			`<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces"><interface><name>eth0</name><mtu>70000</mtu></interface></interfaces>`,
			leaf.ErrInvalidValue,
			"leaf <mtu>",
		},
		{
			"DuplicateKey",
			`<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces"><interface><name>eth0</name></interface><interface><name>eth0</name></interface></interfaces>`,
			tree.ErrInvalidNode,
			"duplicate list instance",
		},
		{
			"ElementInLeaf",
			`<interfaces xmlns="urn:ietf:params:xml:ns:yang:ietf-interfaces"><interface><name><x/></name></interface></interfaces>`,
			ErrParse,
			"leaf <name> cannot contain element <x>",
		},
	}
	//nolint: scopelint
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithSchema(interfacesSchema(t)), LoggingHooks(NoOpLoggingHooks))
			_, err := p.ParseString(tt.doc)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
			assert.True(t, errors.Is(err, tt.target))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseData(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		names []string
	}{
		{
			"Reply",
			`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1"><data><top xmlns="urn:example:test"><a>1</a></top><other xmlns="urn:example:test"/></data></rpc-reply>`,
			[]string{"top", "other"},
		},
		{
			"Data",
			`<data xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><top xmlns="urn:example:test"><a>1</a></top></data>`,
			[]string{"top"},
		},
		{
			"EmptyData",
			`<data xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"/>`,
			nil,
		},
		{
			"Bare",
			`<top xmlns="urn:example:test"><a>1</a></top>`,
			[]string{"top"},
		},
	}
	//nolint: scopelint
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := New().ParseData(strings.NewReader(tt.doc))
			assert.NoError(t, err)

			var names []string
			ns.Each(func(i int, n *tree.Node) {
				names = append(names, n.Name.Local)
			})
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestParseDataErrors(t *testing.T) {
	p := New(LoggingHooks(NoOpLoggingHooks))

	_, err := p.ParseData(strings.NewReader(`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><ok/></rpc-reply>`))
	assert.True(t, errors.Is(err, tree.ErrNotFound))

	_, err = p.ParseData(strings.NewReader(`<data>`))
	assert.True(t, errors.Is(err, ErrParse))
}

func TestParseBytes(t *testing.T) {
	root, err := New().ParseBytes([]byte(`<a xmlns="urn:example:test">1</a>`))
	assert.NoError(t, err)
	assert.True(t, root.Value().Equal("1"))
}

func TestParserIsReusable(t *testing.T) {
	p := New(LoggingHooks(NoOpLoggingHooks))

	_, err := p.ParseString("<a><b></a>")
	assert.Error(t, err)

	root, err := p.ParseString("<a><b/></a>")
	assert.NoError(t, err, "a failed parse leaves no state behind")
	assert.Equal(t, 1, root.Len())
}

func TestDefaultConfig(t *testing.T) {
	p := New()
	assert.Equal(t, 50, p.config.MaxDepth)
	assert.Equal(t, 10000, p.config.MaxElements)
	assert.Nil(t, p.config.Schema)

	p = New(WithConfig(&Config{MaxDepth: 3}))
	assert.Equal(t, 3, p.config.MaxDepth)
	assert.Equal(t, 10000, p.config.MaxElements, "unset properties take default values")
}

func TestLoggingHooks(t *testing.T) {
	var started, elements int
	var done error
	p := New(LoggingHooks(&Trace{
		ParseStart: func() { started++ },
		ParseDone: func(root *tree.Node, n int, err error, d time.Duration) {
			elements = n
			done = err
		},
	}))

	_, err := p.ParseString("<a><b/><c/></a>")
	assert.NoError(t, err)
	assert.Equal(t, 1, started)
	assert.Equal(t, 3, elements)
	assert.NoError(t, done)

	_, err = p.ParseString("<a><b/>")
	assert.Error(t, err, "nil error hook is replaced by a no-op")
	assert.Equal(t, 2, started)
	assert.Equal(t, err, done)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "in-attribute", InAttribute.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "unrecognised state 42", State(42).String())
}

func TestDiagnosticHooksForUntestableExceptions(t *testing.T) {
	hooks := DiagnosticLoggingHooks
	hooks.ParseStart()
	hooks.ParseDone(tree.NewContainer(xml.Name{Local: "a"}), 1, nil, time.Millisecond)
	hooks.ParseDone(nil, 0, errors.New("problem"), time.Millisecond)
	hooks.Error("Context", errors.New("problem"))
}
