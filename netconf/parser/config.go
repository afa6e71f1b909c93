package parser

import (
	"github.com/damianoneill/nctree/netconf/schema"
)

// Defines structs describing parser configuration.

// Config defines properties that control parsing.
type Config struct {
	// Schema supplies the kind of each node and the type of each leaf. Nodes that are not found are
	// inferred from the document: elements with element children are containers, others string leaves.
	Schema schema.Lookup

	// Defines the maximum element nesting depth.
	MaxDepth int

	// Defines the maximum number of elements in a document.
	MaxElements int
}

// DefaultConfig defines the limits applied to properties left unset.
var DefaultConfig = &Config{
	MaxDepth:    50,
	MaxElements: 10000,
}

// Option configures a Parser.
type Option func(*Parser)

// WithConfig replaces the configuration of the parser; unset properties take their default values.
func WithConfig(cfg *Config) Option {
	return func(p *Parser) {
		p.config = *cfg
	}
}

// WithSchema defines the schema lookup consulted when constructing nodes.
func WithSchema(lookup schema.Lookup) Option {
	return func(p *Parser) {
		p.config.Schema = lookup
	}
}

// MaxDepth defines the maximum element nesting depth.
func MaxDepth(depth int) Option {
	return func(p *Parser) {
		p.config.MaxDepth = depth
	}
}

// MaxElements defines the maximum number of elements in a document.
func MaxElements(count int) Option {
	return func(p *Parser) {
		p.config.MaxElements = count
	}
}

// LoggingHooks defines a set of logging hooks to be used by the parser.
// Default value is DefaultLoggingHooks.
func LoggingHooks(trace *Trace) Option {
	return func(p *Parser) {
		p.trace = trace
	}
}
