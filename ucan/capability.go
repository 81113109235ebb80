package ucan

import (
	"fmt"

	"github.com/storacha/go-cacao/core/ipld"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

type capability[T any] struct {
	can  Ability
	nb   T
	with Resource
}

var _ Capability[any] = (*capability[any])(nil)

func (c *capability[T]) Can() Ability {
	return c.can
}

func (c *capability[T]) Nb() T {
	return c.nb
}

func (c *capability[T]) With() Resource {
	return c.with
}

func (c *capability[T]) String() string {
	return fmt.Sprintf("%s %s", c.can, c.with)
}

func NewCapability[Caveats any](can Ability, with Resource, nb Caveats) Capability[Caveats] {
	return &capability[Caveats]{
		can:  can,
		with: with,
		nb:   nb,
	}
}

// capabilityModel builds the claim model of a capability. Caveats are sorted
// into DAG-CBOR key order and omitted when the builder yields no node.
func capabilityModel(c Capability[CaveatBuilder]) (udm.CapabilityModel, error) {
	if c.Nb() == nil {
		return udm.NewCapabilityModel(c.With(), c.Can(), nil), nil
	}
	nb, err := c.Nb().ToIPLD()
	if err != nil {
		return udm.CapabilityModel{}, fmt.Errorf("building caveats: %w", err)
	}
	if nb != nil {
		if nb, err = ipld.SortNode(nb); err != nil {
			return udm.CapabilityModel{}, fmt.Errorf("sorting caveats: %w", err)
		}
	}
	return udm.NewCapabilityModel(c.With(), c.Can(), nb), nil
}
