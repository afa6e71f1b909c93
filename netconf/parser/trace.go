package parser

import (
	"log"
	"time"

	"github.com/damianoneill/nctree/netconf/tree"
)

// Trace defines a structure for handling parser trace events
type Trace struct {
	// ParseStart is called before a document is parsed.
	ParseStart func()

	// ParseDone is called when parsing completes, with the number of elements read and err
	// indicating whether it was successful.
	ParseDone func(root *tree.Node, elements int, err error, d time.Duration)

	// Error is called after an error condition has been detected.
	Error func(context string, err error)
}

// DefaultLoggingHooks provides a default logging hook to report errors.
var DefaultLoggingHooks = &Trace{
	Error: func(context string, err error) {
		log.Printf("NETCONF-ParseError context:%s err:%v\n", context, err)
	},
}

// DiagnosticLoggingHooks provides a set of default diagnostic hooks
var DiagnosticLoggingHooks = &Trace{
	ParseStart: func() {
		log.Printf("NETCONF-ParseStart\n")
	},
	ParseDone: func(root *tree.Node, elements int, err error, d time.Duration) {
		name := ""
		if root != nil {
			name = root.Name.Local
		}
		log.Printf("NETCONF-ParseDone root:%s elements:%d err:%v took:%dms\n", name, elements, err, d.Milliseconds())
	},
	Error: DefaultLoggingHooks.Error,
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	ParseStart: func() {},
	ParseDone:  func(root *tree.Node, elements int, err error, d time.Duration) {},
	Error:      func(context string, err error) {},
}
