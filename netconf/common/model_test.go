package common

import (
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	assert "github.com/stretchr/testify/require"
)

func TestRPCErrorString(t *testing.T) {
	err := &RPCError{
		Severity: "Severity",
		Message:  "Message",
	}

	assert.Equal(t, "netconf rpc [Severity] 'Message'", err.Error())
}

func TestReplyErr(t *testing.T) {
	var nilReply *RPCReply
	assert.Equal(t, io.ErrUnexpectedEOF, nilReply.Err())

	assert.NoError(t, (&RPCReply{Ok: true}).Err())
	assert.NoError(t, (&RPCReply{Errors: []RPCError{{Severity: "warning", Message: "careful"}}}).Err())

	err := (&RPCReply{Errors: []RPCError{
		{Severity: "warning", Message: "careful"},
		{Severity: "error", Message: "failed", Tag: "invalid-value"},
	}}).Err()
	var rpcErr *RPCError
	assert.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "invalid-value", rpcErr.Tag)
}

func TestNewRPCMessage(t *testing.T) {
	m1 := NewRPCMessage(`<get-config><source><running/></source></get-config>`)
	m2 := NewRPCMessage(`<get-config><source><running/></source></get-config>`)

	_, err := uuid.Parse(m1.MessageID)
	assert.NoError(t, err, "message id should be a uuid")
	assert.NotEqual(t, m1.MessageID, m2.MessageID)

	b, err := xml.Marshal(m1)
	assert.NoError(t, err)
	assert.Equal(t, `<rpc xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="`+m1.MessageID+`">`+
		`<get-config><source><running/></source></get-config></rpc>`, string(b))
}

func TestReplyUnmarshal(t *testing.T) {
	raw := `<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="101"><data><top xmlns="urn:example:test"/></data></rpc-reply>`

	reply := &RPCReply{}
	assert.NoError(t, xml.Unmarshal([]byte(raw), reply))
	assert.Equal(t, "101", reply.MessageID)
	assert.Equal(t, `<data><top xmlns="urn:example:test"/></data>`, reply.Data)
	assert.NoError(t, reply.Err())
}
