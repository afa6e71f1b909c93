package ops

import (
	"fmt"
	"strings"

	"github.com/damianoneill/nctree/netconf/common"
	"github.com/damianoneill/nctree/netconf/diff"
	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/pkg/errors"
)

// Executor issues a Netconf RPC request and delivers the reply, as provided by a netconf client session.
type Executor interface {
	Execute(req common.Request) (*common.RPCReply, error)
}

// ConfigSession represents the configuration operations of a Netconf session, exchanging configuration
// as trees.
type ConfigSession interface {
	// GetConfigTree issues a GET-CONFIG request, with the supplied subtree filter and source, and delivers
	// the top-level nodes of the reply data. The filter can be:
	// - nil, to request the entire configuration,
	// - an xml string,
	// - a *tree.Node or tree.NodeSet, serialized as the filter content,
	// - a struct with xml tags.
	GetConfigTree(filter interface{}, source string) (tree.NodeSet, error)

	// GetConfigXpathTree issues a GET-CONFIG request, with the supplied xpath filter, source and namespace
	// list, and delivers the top-level nodes of the reply data.
	GetConfigXpathTree(xpath string, nslist []Namespace, source string) (tree.NodeSet, error)

	// EditConfigTree issues an edit-config request, applying the nodes to the target configuration.
	// EditOptions can be added to qualify the operation.
	EditConfigTree(target string, nodes tree.NodeSet, options ...EditOption) error

	// ApplyDiff compares the before and after versions of a configuration tree and issues an edit-config
	// request that transforms the first into the second. No request is issued if the trees hold the
	// same configuration. The comparison result is delivered in either case.
	ApplyDiff(target string, before, after *tree.Node, options ...EditOption) (*diff.Result, error)

	// EditConfig issues an edit-config request defined by config to be applied to the target configuration.
	// EditOptions can be added to qualify the operation.
	// config will be defined by a ConfigOption, which can be one of:
	// - Cfg(cfg), where cfg is
	//   o   an xml string, in which case it will be used verbatim as the content of the <config> element.
	//   o   a struct with xml tags that will be marshalled as the child of the <config> element.
	// - CfgURL(url), in which case the configuration is defined by a <url> element.
	EditConfig(target string, config ConfigOption, options ...EditOption) error

	// CopyConfig issues a copy-config request.
	// source and target are defined by a CfgDsOpt, which can be one of:
	// - DsName(name) where name defines the configuration data store name (Running, Candidate ...)
	// - DsURL(url) where url defines the url of the datastore
	CopyConfig(source, target CfgDsOpt) error

	// DeleteConfig issues a delete-config request.
	DeleteConfig(target CfgDsOpt) error

	// Lock issues a lock request on the target configuration.
	Lock(target string) error

	// Unlock issues an unlock request on the target configuration.
	Unlock(target string) error

	// Discard issues a discard changes request.
	Discard() error

	// Commit issues a commit request, making the candidate configuration the running configuration.
	Commit() error
}

type sImpl struct {
	exec   Executor
	config *sessionConfig
}

func (s *sImpl) GetConfigTree(filter interface{}, source string) (tree.NodeSet, error) {
	body, err := filterBody(filter)
	if err != nil {
		return tree.NodeSet{}, err
	}
	return s.handleGetConfigRequest(createGetConfigSubtreeRequest(body, source))
}

func (s *sImpl) GetConfigXpathTree(xpath string, nslist []Namespace, source string) (tree.NodeSet, error) {
	return s.handleGetConfigRequest(createGetConfigXpathRequest(xpath, source, nslist))
}

func (s *sImpl) EditConfigTree(target string, nodes tree.NodeSet, options ...EditOption) error {
	if nodes.IsEmpty() {
		return errors.Wrap(tree.ErrEmptySet, "no configuration to edit")
	}
	cfg, err := nodes.ToXML()
	if err != nil {
		return err
	}
	return s.EditConfig(target, Cfg(cfg), options...)
}

func (s *sImpl) ApplyDiff(target string, before, after *tree.Node, options ...EditOption) (*diff.Result, error) {
	r, err := s.config.differ.Diff(before, after)
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return r, nil
	}

	edit, err := r.EditConfig(before, after)
	if err != nil {
		return r, err
	}
	return r, s.EditConfigTree(target, tree.NewNodeSet(edit), options...)
}

func (s *sImpl) EditConfig(target string, config ConfigOption, options ...EditOption) error {
	return s.execute(createEditConfigRequest(target, config, options...))
}

func (s *sImpl) CopyConfig(source, target CfgDsOpt) error {
	return s.execute(createCopyConfigRequest(source, target))
}

func (s *sImpl) DeleteConfig(target CfgDsOpt) error {
	return s.execute(createDeleteConfigRequest(target))
}

func (s *sImpl) Lock(target string) error {
	return s.execute(createLockRequest(target))
}

func (s *sImpl) Unlock(target string) error {
	return s.execute(createUnlockRequest(target))
}

func (s *sImpl) Discard() error {
	return s.execute(&DiscardReq{})
}

func (s *sImpl) Commit() error {
	return s.execute(&CommitReq{})
}

func (s *sImpl) execute(req common.Request) error {
	_, err := s.send(req)
	return err
}

// send executes req, mapping an rpc-error in the reply to an error.
func (s *sImpl) send(req common.Request) (*common.RPCReply, error) {
	reply, err := s.exec.Execute(req)
	if err != nil {
		return nil, err
	}
	if err = reply.Err(); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *sImpl) handleGetConfigRequest(req common.Request) (tree.NodeSet, error) {
	reply, err := s.send(req)
	if err != nil {
		return tree.NodeSet{}, err
	}
	// Data holds the content of the rpc-reply, which can carry warnings alongside <data>.
	doc := fmt.Sprintf(`<rpc-reply xmlns=%q xmlns:%s=%q>%s</rpc-reply>`,
		common.NetconfNS, common.NetconfPrefix, common.NetconfNS, reply.Data)
	nodes, err := s.config.parser.ParseData(strings.NewReader(doc))
	if err != nil {
		return tree.NodeSet{}, errors.Wrap(err, "failed to parse get-config reply")
	}
	return nodes, nil
}

// filterBody delivers filter in a form accepted by common.GetUnion.
func filterBody(filter interface{}) (interface{}, error) {
	switch f := filter.(type) {
	case *tree.Node:
		return f.ToXML()
	case tree.NodeSet:
		return f.ToXML()
	}
	return filter, nil
}

// ConfigOption defines the configuration to be applied by an edit config operation
type ConfigOption func(*EditConfigReq)

func Cfg(cfg interface{}) ConfigOption {
	return func(req *EditConfigReq) {
		req.Config = &Config{Union: common.GetUnion(cfg)}
	}
}

func CfgURL(url string) ConfigOption {
	return func(req *EditConfigReq) {
		req.ConfigURL = url
	}
}

// CfgDsOpt defines a configuration datastore.
type CfgDsOpt func(*ConfigType)

func DsName(name string) CfgDsOpt {
	return func(t *ConfigType) {
		t.Type = datastore(name).Type
	}
}

func DsURL(url string) CfgDsOpt {
	return func(t *ConfigType) {
		t.URL = url
	}
}

// EditOption configures an edit config operation.
type EditOption func(*EditConfigReq)

func DefaultOperation(oper string) EditOption {
	return func(req *EditConfigReq) {
		req.DefaultOperation = oper
	}
}

func TestOption(opt string) EditOption {
	return func(req *EditConfigReq) {
		req.TestOption = opt
	}
}

func ErrorOption(opt string) EditOption {
	return func(req *EditConfigReq) {
		req.ErrorOption = opt
	}
}

func (r *EditConfigReq) applyOpts(options ...EditOption) {
	for _, opt := range options {
		opt(r)
	}
}

func getNamespaceAttributes(nslist []Namespace) string {
	var attrs string
	for _, ns := range nslist {
		attrs = fmt.Sprintf(`%s xmlns:%s=%q`, attrs, ns.ID, ns.Path)
	}
	return strings.TrimSpace(attrs)
}

// datastore names a configuration datastore as a self-closing element, which the xml Marshaller
// will not create (and some devices require).
func datastore(name string) *ConfigType {
	return &ConfigType{Type: "<" + name + "/>"}
}

func createGetConfigSubtreeRequest(s interface{}, source string) common.Request {
	req := &GetConfigReq{Source: datastore(source)}
	if s != nil {
		req.Filter = &Filter{Type: "subtree", Union: common.GetUnion(s)}
	}
	return req
}

func createGetConfigXpathRequest(xpath, source string, nslist []Namespace) common.Request {
	req := &GetConfigReq{Source: datastore(source)}
	if xpath != "" {
		req.FilterBody = createXpathFilter(xpath, nslist)
	}
	return req
}

func createXpathFilter(xpath string, nslist []Namespace) string {
	return fmt.Sprintf(`<filter %s type="xpath" select=%q/>`, getNamespaceAttributes(nslist), xpath)
}

func createEditConfigRequest(target string, cfgOpt ConfigOption, options ...EditOption) *EditConfigReq {
	req := &EditConfigReq{Target: datastore(target)}
	req.applyOpts(options...)
	cfgOpt(req)
	return req
}

func createCopyConfigRequest(source, target CfgDsOpt) *CopyConfigReq {
	req := &CopyConfigReq{Source: &ConfigType{}, Target: &ConfigType{}}
	source(req.Source)
	target(req.Target)
	return req
}

func createDeleteConfigRequest(target CfgDsOpt) *DeleteConfigReq {
	req := &DeleteConfigReq{Target: &ConfigType{}}
	target(req.Target)
	return req
}

func createLockRequest(target string) *LockReq {
	return &LockReq{Target: datastore(target)}
}

func createUnlockRequest(target string) *UnlockReq {
	return &UnlockReq{Target: datastore(target)}
}
