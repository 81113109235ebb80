package header

import (
	// to use go:embed
	_ "embed"

	"github.com/ipld/go-ipld-prime/schema"
	cschema "github.com/storacha/go-cacao/core/schema"
	"github.com/storacha/go-cacao/did"
)

//go:embed header.ipldsch
var headersch []byte

var loader = cschema.NewLoader(headersch)

// Fields are the required JWT header fields, in encoding order.
var Fields = []string{"alg", "ucv", "typ"}

// Type is the JWT header type. It declares no DID fields, so the
// representation it is compiled with does not matter.
func Type() schema.Type {
	return loader.Type(did.String, "Header")
}

// HeaderModel is the JWT header of a compact UCAN.
type HeaderModel struct {
	Alg string
	Ucv string
	Typ string
}
