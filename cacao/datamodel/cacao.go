package datamodel

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

//go:embed cacao.ipldsch
var cacaosch []byte

var loader = cschema.NewLoader(cacaosch)

// Type is the CACAO envelope type compiled with DID fields in the given
// representation.
func Type(rep did.Representation) schema.Type {
	return loader.Type(rep, "CACAO")
}

func Options(rep did.Representation) []bindnode.Option {
	return []bindnode.Option{cschema.DIDOption(rep)}
}

// CACAOModel is a CACAO envelope: header, payload and signature block.
type CACAOModel struct {
	H HeaderModel
	P PayloadModel
	S SignatureModel
}

type HeaderModel struct {
	T string
}

// PayloadModel is the remapped UCAN payload. Proofs stay CID strings as they
// appear in the JWT.
type PayloadModel struct {
	Iss did.DID
	Aud did.DID
	Att []udm.CapabilityModel
	Exp uint64
	Prf []string
	Fct []udm.FactModel
	Nnc *string
	Nbf *uint64
}

type SignatureModel struct {
	T string
	M *MetadataModel
	S []byte
}

// MetadataModel is the signature metadata block, the JWT header without its
// version and type fields.
type MetadataModel struct {
	Keys   []string
	Values map[string]datamodel.Node
}
