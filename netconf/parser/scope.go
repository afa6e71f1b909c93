package parser

import (
	"github.com/damianoneill/nctree/netconf/tree"

	"github.com/pkg/errors"
)

// nsScope holds the namespace bindings in effect for an element.
type nsScope struct {
	parent   *nsScope
	def      string
	prefixes map[string]string
}

var rootScope = &nsScope{prefixes: map[string]string{"xml": tree.XMLNamespace}}

func (s *nsScope) bind(prefix, space string) error {
	switch {
	case space == "":
		return errors.Errorf("prefix %s bound to an empty namespace", prefix)
	case prefix == "xmlns", prefix == "xml" && space != tree.XMLNamespace:
		return errors.Errorf("prefix %s cannot be rebound", prefix)
	}
	if s.prefixes == nil {
		s.prefixes = map[string]string{}
	}
	s.prefixes[prefix] = space
	return nil
}

// resolve delivers the namespace of prefix. An empty prefix resolves to the default namespace for
// elements and to no namespace for attributes.
func (s *nsScope) resolve(prefix string, element bool) (string, error) {
	if prefix == "" {
		if element {
			return s.def, nil
		}
		return "", nil
	}
	for sc := s; sc != nil; sc = sc.parent {
		if space, ok := sc.prefixes[prefix]; ok {
			return space, nil
		}
	}
	return "", errors.Errorf("undeclared namespace prefix %s", prefix)
}
