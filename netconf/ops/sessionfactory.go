package ops

import (
	"github.com/damianoneill/nctree/netconf/diff"
	"github.com/damianoneill/nctree/netconf/parser"
)

// Defines a factory method for instantiating configuration sessions.

// NewConfigSession delivers a configuration session that issues its requests through exec.
func NewConfigSession(exec Executor, opts ...SessionOption) ConfigSession {
	config := defaultConfig
	for _, opt := range opts {
		opt(&config)
	}
	return &sImpl{exec: exec, config: &config}
}

type sessionConfig struct {
	parser *parser.Parser
	differ *diff.Differ
}

var defaultConfig = sessionConfig{
	parser: parser.New(),
	differ: diff.New(),
}

// SessionOption implements options for configuring session behaviour.
type SessionOption func(*sessionConfig)

// WithParser defines the parser used to read reply data, for example one holding a schema.
// Default value is a parser with default configuration.
func WithParser(p *parser.Parser) SessionOption {
	return func(c *sessionConfig) {
		c.parser = p
	}
}

// WithDiffer defines the differ used by ApplyDiff.
// Default value is a differ with default configuration.
func WithDiffer(d *diff.Differ) SessionOption {
	return func(c *sessionConfig) {
		c.differ = d
	}
}
