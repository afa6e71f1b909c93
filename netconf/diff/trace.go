package diff

import (
	"log"
	"time"

	"github.com/damianoneill/nctree/netconf/tree"
)

// Trace defines a structure for handling differ trace events
type Trace struct {
	// DiffStart is called before two trees are compared.
	DiffStart func(a, b *tree.Node)

	// DiffDone is called when a comparison completes, with err indicating whether it was successful.
	DiffDone func(a, b *tree.Node, r *Result, err error, d time.Duration)

	// Error is called after an error condition has been detected.
	Error func(context string, err error)
}

// DefaultLoggingHooks provides a default logging hook to report errors.
var DefaultLoggingHooks = &Trace{
	Error: func(context string, err error) {
		log.Printf("NETCONF-DiffError context:%s err:%v\n", context, err)
	},
}

// DiagnosticLoggingHooks provides a set of default diagnostic hooks, reporting the line differences
// between the compared trees.
var DiagnosticLoggingHooks = &Trace{
	DiffStart: func(a, b *tree.Node) {
		log.Printf("NETCONF-DiffStart a:%s b:%s\n", name(a), name(b))
	},
	DiffDone: func(a, b *tree.Node, r *Result, err error, d time.Duration) {
		if err != nil || r.Empty() {
			log.Printf("NETCONF-DiffDone err:%v took:%dms\n", err, d.Milliseconds())
			return
		}
		log.Printf("NETCONF-DiffDone %s took:%dms\n%s", r, d.Milliseconds(), Render(a, b))
	},
	Error: DefaultLoggingHooks.Error,
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	DiffStart: func(a, b *tree.Node) {},
	DiffDone:  func(a, b *tree.Node, r *Result, err error, d time.Duration) {},
	Error:     func(context string, err error) {},
}

func name(n *tree.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name.Local
}
