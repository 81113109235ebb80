package payload

import (
	// to use go:embed
	_ "embed"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	cschema "github.com/storacha/go-cacao/core/schema"
	"github.com/storacha/go-cacao/did"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

//go:embed payload.ipldsch
var payloadsch []byte

var loader = cschema.NewLoader(payloadsch)

// Type is the JWT payload type. DIDs in a JWT payload are always text.
func Type() schema.Type {
	return loader.Type(did.String, "Payload")
}

// Options are the bindnode options needed to bind [PayloadModel].
func Options() []bindnode.Option {
	return []bindnode.Option{cschema.DIDOption(did.String)}
}

// Fields are the declared payload claims, in encoding order.
var Fields = []string{"iss", "aud", "att", "prf", "exp", "fct", "nnc", "nbf"}

// Claim is a payload claim with no declared field.
type Claim struct {
	Key   string
	Value datamodel.Node
}

// PayloadModel is the JWT payload of a compact UCAN. Proofs are CID strings.
type PayloadModel struct {
	Iss did.DID
	Aud did.DID
	Att []udm.CapabilityModel
	Prf []string
	Exp uint64
	Fct []udm.FactModel
	Nnc *string
	Nbf *uint64
}
