package ucan

import (
	// to use go:embed
	_ "embed"

	"fmt"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	cacaoipld "github.com/storacha/go-cacao/core/ipld"
	cschema "github.com/storacha/go-cacao/core/schema"
	"github.com/storacha/go-cacao/did"
)

//go:embed ucan.ipldsch
var ucansch []byte

var loader = cschema.NewLoader(ucansch)

// Type is the UCAN type compiled with DID fields in the given representation.
func Type(rep did.Representation) schema.Type {
	return loader.Type(rep, "UCAN")
}

// CapabilityType is the capability type compiled for the representation.
func CapabilityType(rep did.Representation) schema.Type {
	return loader.Type(rep, "Capability")
}

// Options are the bindnode options needed to bind [UCANModel] for the
// representation.
func Options(rep did.Representation) []bindnode.Option {
	return []bindnode.Option{cschema.DIDOption(rep)}
}

// UCANModel is the native claim set of a UCAN. Field order matches the
// schema, which is the order fields are encoded in.
type UCANModel struct {
	V   string
	Iss did.DID
	Aud did.DID
	Att []CapabilityModel
	Exp uint64
	Prf []ipld.Link
	S   []byte
	Fct []FactModel
	Nnc *string
	Nbf *uint64
}

// CapabilityModel is a capability claim. `with` and `can` are required, `nb`
// holds caveats and any further keys are carried as they are.
type CapabilityModel struct {
	Keys   []string
	Values map[string]datamodel.Node
}

// NewCapabilityModel builds a capability from its resource, ability and
// optional caveats.
func NewCapabilityModel(with, can string, nb datamodel.Node) CapabilityModel {
	m := CapabilityModel{
		Keys:   []string{"can", "with"},
		Values: map[string]datamodel.Node{"with": basicnode.NewString(with), "can": basicnode.NewString(can)},
	}
	if nb != nil {
		m.Keys = append([]string{"nb"}, m.Keys...)
		m.Values["nb"] = nb
	}
	return m
}

// Sorted returns a copy of the capability with its keys, and the keys of
// every nested map, in DAG-CBOR order.
func (c CapabilityModel) Sorted() (CapabilityModel, error) {
	out := CapabilityModel{
		Keys:   append([]string{}, c.Keys...),
		Values: make(map[string]datamodel.Node, len(c.Keys)),
	}
	for _, k := range c.Keys {
		v, ok := c.Values[k]
		if !ok || v == nil {
			return CapabilityModel{}, fmt.Errorf("missing value for key %q", k)
		}
		sv, err := cacaoipld.SortNode(v)
		if err != nil {
			return CapabilityModel{}, fmt.Errorf("key %q: %w", k, err)
		}
		out.Values[k] = sv
	}
	cacaoipld.SortKeys(out.Keys)
	return out, nil
}

// With is the resource, or the empty string when it is absent or not text.
func (c CapabilityModel) With() string {
	return c.text("with")
}

// Can is the ability, or the empty string when it is absent or not text.
func (c CapabilityModel) Can() string {
	return c.text("can")
}

// Nb is the caveats node, nil when there are none.
func (c CapabilityModel) Nb() datamodel.Node {
	return c.Values["nb"]
}

func (c CapabilityModel) text(key string) string {
	v, ok := c.Values[key]
	if !ok || v == nil {
		return ""
	}
	s, err := v.AsString()
	if err != nil {
		return ""
	}
	return s
}

type FactModel struct {
	Keys   []string
	Values map[string]datamodel.Node
}
