package ops

import (
	"encoding/xml"

	"github.com/damianoneill/nctree/netconf/common"
)

const (
	// Configuration Datastores
	RunningCfg   = "running"
	CandidateCfg = "candidate"
	StartupCfg   = "startup"

	// Edit Config Error Options
	StopOnErrorErrOpt     = "stop-on-error"
	ContinueOnErrorErrOpt = "continue-on-error"
	RollbackOnErrorErrOpt = "rollback-on-error"

	// Edit Config Operation Types
	MergeOp   = "merge"
	ReplaceOp = "replace"
	NoneOp    = "none"

	// Edit Config Test Options
	TestThenSetOpt = "test-then-set"
	SetOpt         = "set"
	TestOnlyOpt    = "test-only"
)

// Namespace binds a prefix used by an xpath filter.
type Namespace struct {
	ID   string
	Path string
}

// Request structs.

type Filter struct {
	XMLName xml.Name `xml:"filter"`
	Type    string   `xml:"type,attr"`
	Select  string   `xml:"select,attr,omitempty"`
	*common.Union
}

type Config struct {
	XMLName xml.Name `xml:"config"`
	*common.Union
}

type ConfigType struct {
	Type string `xml:",innerxml"`
	URL  string `xml:"url,omitempty"`
}

type GetConfigReq struct {
	XMLName    xml.Name    `xml:"get-config"`
	Source     *ConfigType `xml:"source"`
	Filter     *Filter
	FilterBody string `xml:",innerxml"`
}

type EditConfigReq struct {
	XMLName          xml.Name    `xml:"edit-config"`
	Target           *ConfigType `xml:"target"`
	ErrorOption      string      `xml:"error-option,omitempty"`
	TestOption       string      `xml:"test-option,omitempty"`
	DefaultOperation string      `xml:"default-operation,omitempty"`
	Config           *Config
	ConfigURL        string `xml:"url,omitempty"`
}

type CopyConfigReq struct {
	XMLName xml.Name    `xml:"copy-config"`
	Target  *ConfigType `xml:"target"`
	Source  *ConfigType `xml:"source"`
}

type DeleteConfigReq struct {
	XMLName xml.Name    `xml:"delete-config"`
	Target  *ConfigType `xml:"target"`
}

type LockReq struct {
	XMLName xml.Name    `xml:"lock"`
	Target  *ConfigType `xml:"target"`
}

type UnlockReq struct {
	XMLName xml.Name    `xml:"unlock"`
	Target  *ConfigType `xml:"target"`
}

type DiscardReq struct {
	XMLName xml.Name `xml:"discard-changes"`
}

type CommitReq struct {
	XMLName xml.Name `xml:"commit"`
}
