package common

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Defines structs representing the netconf messages that carry configuration trees.

// Request represents the body of a Netconf RPC request.
type Request interface{}

// RPCMessage defines an rpc request message
type RPCMessage struct {
	XMLName   xml.Name `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc"`
	MessageID string   `xml:"message-id,attr"`
	*Union
}

// NewRPCMessage delivers an rpc message carrying req, identified by a random message id.
// Executor implementations use it to frame the requests they are handed.
func NewRPCMessage(req Request) *RPCMessage {
	return &RPCMessage{MessageID: uuid.NewString(), Union: GetUnion(req)}
}

// RPCReply defines the reply to an rpc request message
type RPCReply struct {
	XMLName   xml.Name   `xml:"rpc-reply"`
	Errors    []RPCError `xml:"rpc-error,omitempty"`
	Data      string     `xml:",innerxml"`
	Ok        bool       `xml:",omitempty"`
	RawReply  string     `xml:"-"`
	MessageID string     `xml:"message-id,attr"`
}

// Err maps a reply to an error, if the reply is either nil or contains an RPC error of severity error.
// Warnings are ignored.
func (r *RPCReply) Err() error {
	if r == nil {
		return io.ErrUnexpectedEOF
	}
	for i := range r.Errors {
		if r.Errors[i].Severity == "error" {
			return &r.Errors[i]
		}
	}
	return nil
}

// RPCError defines an error reply to a RPC request
type RPCError struct {
	Type     string `xml:"error-type"`
	Tag      string `xml:"error-tag"`
	Severity string `xml:"error-severity"`
	Path     string `xml:"error-path"`
	Message  string `xml:"error-message"`
	Info     string `xml:",innerxml"`
}

// Error generates a string representation of the RPC error
func (re *RPCError) Error() string {
	return fmt.Sprintf("netconf rpc [%s] '%s'", re.Severity, re.Message)
}

// Union holds a request body that is either a value marshalled by encoding/xml or verbatim xml text.
type Union struct {
	ValueStr interface{}
	ValueXML string `xml:",innerxml"`
}

// GetUnion wraps s, a string of xml text or a value with xml tags.
func GetUnion(s interface{}) *Union {
	switch request := s.(type) {
	case string:
		return &Union{ValueXML: request}
	default:
		return &Union{ValueStr: request}
	}
}

// Define xml names for netconf messages and edit operations.
var (
	NameRPC       = xml.Name{Space: NetconfNS, Local: "rpc"}
	NameRPCReply  = xml.Name{Space: NetconfNS, Local: "rpc-reply"}
	NameData      = xml.Name{Space: NetconfNS, Local: "data"}
	NameOperation = xml.Name{Space: NetconfNS, Local: "operation"}
)

// Define netconf URNs.
const (
	NetconfNS = "urn:ietf:params:xml:ns:netconf:base:1.0"
	// NetconfPrefix is the prefix conventionally bound to NetconfNS.
	NetconfPrefix = "nc"
)

// Edit operations carried by the operation attribute of configuration nodes.
const (
	MergeOperation   = "merge"
	ReplaceOperation = "replace"
	CreateOperation  = "create"
	DeleteOperation  = "delete"
	RemoveOperation  = "remove"
)
