package ucan

import (
	"errors"
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

// UCAN is the read side of a token's claims.
type UCAN interface {
	// Issuer is the principal that signed the token.
	Issuer() Principal
	// Audience is the principal the token is addressed to.
	Audience() Principal
	// Version is the UCAN spec version the token was issued under.
	Version() Version
	// Capabilities the token grants.
	Capabilities() []Capability[datamodel.Node]
	// Expiration is the time in UTC seconds after which the token is invalid.
	Expiration() UTCUnixTimestamp
	// NotBefore is the time in UTC seconds before which the token is invalid,
	// or 0 if unset.
	NotBefore() UTCUnixTimestamp
	Nonce() Nonce
	Facts() []Fact
	Proofs() []Link
	Signature() signature.Signature
}

// View is a [UCAN] backed by its native claim model.
type View interface {
	UCAN
	Model() *udm.UCANModel
}

type view struct {
	model *udm.UCANModel
	sig   signature.Signature
}

var _ View = (*view)(nil)

func (v *view) Model() *udm.UCANModel {
	return v.model
}

func (v *view) Issuer() Principal {
	return v.model.Iss
}

func (v *view) Audience() Principal {
	return v.model.Aud
}

func (v *view) Version() Version {
	return v.model.V
}

func (v *view) Capabilities() []Capability[datamodel.Node] {
	caps := make([]Capability[datamodel.Node], 0, len(v.model.Att))
	for _, c := range v.model.Att {
		caps = append(caps, NewCapability(c.Can(), c.With(), c.Nb()))
	}
	return caps
}

func (v *view) Expiration() UTCUnixTimestamp {
	return v.model.Exp
}

func (v *view) NotBefore() UTCUnixTimestamp {
	if v.model.Nbf == nil {
		return 0
	}
	return *v.model.Nbf
}

func (v *view) Nonce() Nonce {
	if v.model.Nnc == nil {
		return ""
	}
	return *v.model.Nnc
}

func (v *view) Facts() []Fact {
	var fcts []Fact
	for _, f := range v.model.Fct {
		fct := Fact{}
		for _, k := range f.Keys {
			fct[k] = f.Values[k]
		}
		fcts = append(fcts, fct)
	}
	return fcts
}

func (v *view) Proofs() []Link {
	return v.model.Prf
}

func (v *view) Signature() signature.Signature {
	return v.sig
}

// NewUCAN creates a [View] over a native claim model. The issuer and audience
// must be defined and the signature must be a valid varsig.
func NewUCAN(model *udm.UCANModel) (View, error) {
	if !model.Iss.Defined() {
		return nil, fmt.Errorf("issuer: %w", errUndefinedDID)
	}
	if !model.Aud.Defined() {
		return nil, fmt.Errorf("audience: %w", errUndefinedDID)
	}
	sig, err := signature.Decode(model.S)
	if err != nil {
		return nil, fmt.Errorf("decoding signature: %w", err)
	}
	return &view{model, sig}, nil
}

var errUndefinedDID = errors.New("undefined DID")
