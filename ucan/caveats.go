package ucan

import (
	"github.com/ipld/go-ipld-prime/datamodel"
)

// CaveatBuilder builds the `nb` field of a capability.
type CaveatBuilder interface {
	ToIPLD() (datamodel.Node, error)
}

// FactBuilder builds a fact entry.
type FactBuilder interface {
	ToIPLD() (map[string]datamodel.Node, error)
}

// NoCaveats can be used when a capability has no additional domain specific
// details and/or restrictions. The capability is issued without an `nb` field.
type NoCaveats struct{}

func (c NoCaveats) ToIPLD() (datamodel.Node, error) {
	return nil, nil
}
