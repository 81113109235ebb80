// Package cacao remaps a parsed UCAN into a CACAO envelope.
package cacao

import (
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	cdm "github.com/storacha/go-cacao/cacao/datamodel"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/did"
	pdm "github.com/storacha/go-cacao/ucan/datamodel/payload"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
	"github.com/storacha/go-cacao/ucan/parser"
)

// HeaderTypePrefix namespaces the UCAN version in the envelope header type.
const HeaderTypePrefix = "ucv@"

// Option is an option configuring the remapping.
type Option func(cfg *remapConfig) error

type remapConfig struct {
	rep      did.Representation
	metadata bool
	elide    bool
}

// WithDIDRepresentation configures how issuer and audience are represented
// in the envelope payload. The default is [did.Bytes].
func WithDIDRepresentation(rep did.Representation) Option {
	return func(cfg *remapConfig) error {
		if rep != did.Bytes && rep != did.String {
			return fmt.Errorf("unknown DID representation: %d", int(rep))
		}
		cfg.rep = rep
		return nil
	}
}

// WithSignatureMetadata configures whether the envelope carries the `s.m`
// signature metadata block. It is included by default.
func WithSignatureMetadata(include bool) Option {
	return func(cfg *remapConfig) error {
		cfg.metadata = include
		return nil
	}
}

// WithProofElision configures whether an empty proof list is dropped from
// the payload. Enabled by default.
func WithProofElision(elide bool) Option {
	return func(cfg *remapConfig) error {
		cfg.elide = elide
		return nil
	}
}

// Envelope is a CACAO envelope together with the DID representation it was
// built for.
type Envelope struct {
	model *cdm.CACAOModel
	rep   did.Representation
	extra []pdm.Claim
}

// NewEnvelope pairs a CACAO model with the DID representation it is encoded
// with. Extra payload claims are written after the declared payload fields,
// in the order given.
func NewEnvelope(model *cdm.CACAOModel, rep did.Representation, extra ...pdm.Claim) *Envelope {
	return &Envelope{model, rep, extra}
}

func (e *Envelope) Model() *cdm.CACAOModel {
	return e.model
}

// Extra are the payload claims carried over from the token that have no
// declared field.
func (e *Envelope) Extra() []pdm.Claim {
	return e.extra
}

// Node is the envelope as an IPLD node with DIDs in the envelope's
// representation. Struct fields iterate in declaration order, followed in
// the payload by any extra claims.
func (e *Envelope) Node() (datamodel.Node, error) {
	return e.node(e.rep)
}

func (e *Envelope) node(rep did.Representation) (datamodel.Node, error) {
	nd, err := ipld.WrapWithRecovery(e.model, cdm.Type(rep), cdm.Options(rep)...)
	if err != nil {
		return nil, fmt.Errorf("wrapping envelope: %w", err)
	}
	if len(e.extra) == 0 {
		return nd, nil
	}
	return replaceEntry(nd, "p", func(p datamodel.Node) datamodel.Node {
		return must(qp.BuildMap(basicnode.Prototype.Map, p.Length()+int64(len(e.extra)), func(ma datamodel.MapAssembler) {
			copyEntries(ma, p)
			for _, c := range e.extra {
				qp.MapEntry(ma, c.Key, qp.Node(c.Value))
			}
		}))
	})
}

// DIDRepresentation is the policy the envelope was remapped with.
func (e *Envelope) DIDRepresentation() did.Representation {
	return e.rep
}

// Remap builds the CACAO envelope of a parsed token. No signature
// verification takes place.
func Remap(tok *parser.Token, options ...Option) (*Envelope, error) {
	cfg := remapConfig{rep: did.Bytes, metadata: true, elide: true}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	claims, err := tok.Claims()
	if err != nil {
		return nil, err
	}

	extra, err := tok.Extra()
	if err != nil {
		return nil, err
	}

	att := make([]udm.CapabilityModel, 0, len(claims.Att))
	for i, c := range claims.Att {
		sc, err := c.Sorted()
		if err != nil {
			return nil, fmt.Errorf("copying capability %d: %w", i, err)
		}
		att = append(att, sc)
	}

	p := cdm.PayloadModel{
		Iss: tok.Issuer,
		Aud: tok.Audience,
		Att: att,
		Exp: claims.Exp,
		Prf: claims.Prf,
		Fct: claims.Fct,
		Nnc: claims.Nnc,
		Nbf: claims.Nbf,
	}
	if cfg.elide && p.Prf != nil && len(p.Prf) == 0 {
		p.Prf = nil
	}

	s := cdm.SignatureModel{
		T: tok.Header.Typ,
		S: tok.Signature,
	}
	if cfg.metadata {
		m, err := SignatureMetadata(tok.Header)
		if err != nil {
			return nil, err
		}
		s.M = &m
	}

	model := cdm.CACAOModel{
		H: cdm.HeaderModel{T: HeaderTypePrefix + tok.Header.Ucv},
		P: p,
		S: s,
	}
	return NewEnvelope(&model, cfg.rep, extra...), nil
}

// SignatureMetadata projects the JWT header onto the signature metadata
// block: `alg` and any non standard header fields. `ucv` and `typ` are
// carried elsewhere in the envelope.
func SignatureMetadata(header parser.Header) (cdm.MetadataModel, error) {
	m := cdm.MetadataModel{
		Keys:   []string{"alg"},
		Values: map[string]datamodel.Node{"alg": basicnode.NewString(header.Alg)},
	}
	for _, f := range header.Extra {
		v, err := ipld.SortNode(f.Value)
		if err != nil {
			return cdm.MetadataModel{}, fmt.Errorf("copying header field %q: %w", f.Key, err)
		}
		m.Keys = append(m.Keys, f.Key)
		m.Values[f.Key] = v
	}
	ipld.SortKeys(m.Keys)
	return m, nil
}
