package ucan

import (
	"fmt"
	"time"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
	pdm "github.com/storacha/go-cacao/ucan/datamodel/payload"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
	"github.com/storacha/go-cacao/ucan/formatter"
)

const version = "0.9.1"

// Option is an option configuring a UCAN.
type Option func(cfg *ucanConfig) error

type ucanConfig struct {
	exp uint64
	nbf uint64
	nnc string
	fct []FactBuilder
	prf []Link
}

// WithExpiration configures the expiration time in UTC seconds since Unix
// epoch.
func WithExpiration(exp uint64) Option {
	return func(cfg *ucanConfig) error {
		cfg.exp = exp
		return nil
	}
}

// WithNotBefore configures the time in UTC seconds since Unix epoch when the
// UCAN will become valid.
func WithNotBefore(nbf uint64) Option {
	return func(cfg *ucanConfig) error {
		cfg.nbf = nbf
		return nil
	}
}

// WithNonce configures the nonce value for the UCAN.
func WithNonce(nnc string) Option {
	return func(cfg *ucanConfig) error {
		cfg.nnc = nnc
		return nil
	}
}

// WithFacts configures the facts for the UCAN.
func WithFacts(fct []FactBuilder) Option {
	return func(cfg *ucanConfig) error {
		cfg.fct = fct
		return nil
	}
}

// WithProofs configures the proofs for the UCAN.
func WithProofs(prf []Link) Option {
	return func(cfg *ucanConfig) error {
		cfg.prf = prf
		return nil
	}
}

// Issue creates a new signed token with a given issuer. If expiration is
// not set it defaults to 30 seconds from now.
func Issue(issuer Signer, audience Principal, capabilities []Capability[CaveatBuilder], options ...Option) (View, error) {
	cfg := ucanConfig{}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.exp == 0 {
		cfg.exp = Now() + 30
	}

	capsmdl := []udm.CapabilityModel{}
	for _, cap := range capabilities {
		m, err := capabilityModel(cap)
		if err != nil {
			return nil, err
		}
		capsmdl = append(capsmdl, m)
	}

	prfstrs := []string{}
	for _, link := range cfg.prf {
		prfstrs = append(prfstrs, link.String())
	}

	fctsmdl := []udm.FactModel{}
	for _, f := range cfg.fct {
		vals, err := f.ToIPLD()
		if err != nil {
			return nil, fmt.Errorf("building fact: %w", err)
		}
		fct, err := NewFactModel(vals)
		if err != nil {
			return nil, fmt.Errorf("building fact: %w", err)
		}
		fctsmdl = append(fctsmdl, fct)
	}

	payload := pdm.PayloadModel{
		Iss: issuer.DID(),
		Aud: audience.DID(),
		Att: capsmdl,
		Prf: prfstrs,
		Exp: cfg.exp,
		Fct: fctsmdl,
	}
	if cfg.nnc != "" {
		payload.Nnc = &cfg.nnc
	}
	if cfg.nbf != 0 {
		payload.Nbf = &cfg.nbf
	}

	str, err := formatter.FormatSignPayload(payload, version, issuer.SignatureAlgorithm())
	if err != nil {
		return nil, fmt.Errorf("encoding signature payload: %w", err)
	}

	prf := cfg.prf
	if prf == nil {
		prf = []Link{}
	}
	model := udm.UCANModel{
		V:   version,
		Iss: payload.Iss,
		Aud: payload.Aud,
		Att: capsmdl,
		Exp: cfg.exp,
		Prf: prf,
		S:   issuer.Sign([]byte(str)).Bytes(),
		Fct: fctsmdl,
		Nnc: payload.Nnc,
		Nbf: payload.Nbf,
	}
	return NewUCAN(&model)
}

// NewFactModel builds a fact whose keys are in DAG-CBOR order, with nested
// maps sorted the same way.
func NewFactModel(vals map[string]datamodel.Node) (udm.FactModel, error) {
	fct := udm.FactModel{Values: map[string]datamodel.Node{}}
	for k, v := range vals {
		sv, err := ipld.SortNode(v)
		if err != nil {
			return udm.FactModel{}, fmt.Errorf("fact %q: %w", k, err)
		}
		fct.Keys = append(fct.Keys, k)
		fct.Values[k] = sv
	}
	ipld.SortKeys(fct.Keys)
	return fct, nil
}

// Format serializes a UCAN into the compact JWT form. Base64url padding is
// stripped from every segment.
func Format(ucan View) (string, error) {
	model := ucan.Model()
	alg, err := signature.CodeName(ucan.Signature().Code())
	if err != nil {
		return "", err
	}
	payload := PayloadOf(model)
	str, err := formatter.FormatSignPayload(payload, model.V, alg)
	if err != nil {
		return "", err
	}
	sig, err := formatter.FormatSignature(ucan.Signature())
	if err != nil {
		return "", err
	}
	return str + "." + sig, nil
}

// PayloadOf derives the JWT payload of a native UCAN claim set.
func PayloadOf(model *udm.UCANModel) pdm.PayloadModel {
	prfstrs := []string{}
	for _, link := range model.Prf {
		prfstrs = append(prfstrs, link.String())
	}
	fct := model.Fct
	if fct == nil {
		fct = []udm.FactModel{}
	}
	return pdm.PayloadModel{
		Iss: model.Iss,
		Aud: model.Aud,
		Att: model.Att,
		Prf: prfstrs,
		Exp: model.Exp,
		Fct: fct,
		Nnc: model.Nnc,
		Nbf: model.Nbf,
	}
}

// VerifySignature verifies that the UCAN was signed by the passed verifier.
func VerifySignature(ucan View, verifier Verifier) (bool, error) {
	if ucan.Issuer().DID() != verifier.DID() {
		return false, nil
	}
	model := ucan.Model()
	alg, err := signature.CodeName(ucan.Signature().Code())
	if err != nil {
		return false, err
	}
	str, err := formatter.FormatSignPayload(PayloadOf(model), model.V, alg)
	if err != nil {
		return false, err
	}
	return verifier.Verify([]byte(str), ucan.Signature()), nil
}

// IsExpired checks if a UCAN is expired.
func IsExpired(ucan View) bool {
	return ucan.Expiration() <= Now()
}

// IsTooEarly checks if a UCAN is not active yet.
func IsTooEarly(ucan View) bool {
	nbf := ucan.NotBefore()
	return nbf != 0 && Now() <= nbf
}

// Now returns a UTC Unix timestamp for comparing it against time window of the
// UCAN.
func Now() uint64 {
	return uint64(time.Now().Unix())
}
