// Package parser reads the compact (JWT) serialization of a UCAN into its
// header, payload claims and raw signature.
package parser

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
	hdm "github.com/storacha/go-cacao/ucan/datamodel/header"
	pdm "github.com/storacha/go-cacao/ucan/datamodel/payload"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

// Segment names, used as the field of failures raised for a segment.
const (
	HeaderSegment    = "header"
	PayloadSegment   = "payload"
	SignatureSegment = "signature"
)

// Header is the JWT header of a UCAN.
type Header struct {
	Alg string
	Ucv string
	Typ string
	// Extra holds any further header fields, in DAG-CBOR key order.
	Extra []Field
}

// Field is a key/value pair of a claim map.
type Field struct {
	Key   string
	Value datamodel.Node
}

// Token is a parsed compact UCAN.
type Token struct {
	Header Header
	// Payload is the decoded payload claim map, as it appeared on the wire.
	Payload datamodel.Node
	// Issuer and Audience are the principals named by `iss` and `aud`.
	Issuer   did.DID
	Audience did.DID
	// Signature is the raw signature, without a varsig prefix.
	Signature []byte

	segments [3]string
}

// Parse splits a compact token into its three segments and decodes them.
// Segments may be padded or unpadded base64url.
func Parse(token string) (*Token, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, failure.MalformedToken("expected 3 segments, got %d", len(parts))
	}

	hbytes, err := decodeSegment(HeaderSegment, parts[0])
	if err != nil {
		return nil, err
	}
	pbytes, err := decodeSegment(PayloadSegment, parts[1])
	if err != nil {
		return nil, err
	}
	sig, err := decodeSegment(SignatureSegment, parts[2])
	if err != nil {
		return nil, err
	}

	hnd, err := decodeClaims(HeaderSegment, hbytes)
	if err != nil {
		return nil, err
	}
	header, err := parseHeader(hnd)
	if err != nil {
		return nil, err
	}

	pnd, err := decodeClaims(PayloadSegment, pbytes)
	if err != nil {
		return nil, err
	}
	iss, err := principal(pnd, "iss")
	if err != nil {
		return nil, err
	}
	aud, err := principal(pnd, "aud")
	if err != nil {
		return nil, err
	}

	return &Token{
		Header:    header,
		Payload:   pnd,
		Issuer:    iss,
		Audience:  aud,
		Signature: sig,
		segments:  [3]string{parts[0], parts[1], parts[2]},
	}, nil
}

func decodeSegment(name, seg string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(seg, "="))
	if err != nil {
		return nil, failure.EncodingError(name, err, "decoding base64url")
	}
	return b, nil
}

func decodeClaims(name string, b []byte) (datamodel.Node, error) {
	nd, err := json.DecodeNode(b)
	if err != nil {
		return nil, failure.SchemaError(name, err, "decoding claim map")
	}
	if nd.Kind() != datamodel.Kind_Map {
		return nil, failure.SchemaError(name, nil, "expected map, got %s", nd.Kind())
	}
	return nd, nil
}

func parseHeader(nd datamodel.Node) (Header, error) {
	var h Header
	fields := map[string]*string{"alg": &h.Alg, "ucv": &h.Ucv, "typ": &h.Typ}
	it := nd.MapIterator()
	for !it.Done() {
		k, v, err := it.Next()
		if err != nil {
			return Header{}, failure.SchemaError(HeaderSegment, err, "iterating header")
		}
		key, err := k.AsString()
		if err != nil {
			return Header{}, failure.SchemaError(HeaderSegment, err, "header key")
		}
		dst, ok := fields[key]
		if !ok {
			h.Extra = append(h.Extra, Field{key, v})
			continue
		}
		if *dst, err = v.AsString(); err != nil {
			return Header{}, failure.SchemaError(HeaderSegment+"."+key, err, "expected string")
		}
		delete(fields, key)
	}
	for _, key := range hdm.Fields {
		if _, missing := fields[key]; missing {
			return Header{}, failure.SchemaError(HeaderSegment+"."+key, nil, "missing required field")
		}
	}
	slices.SortFunc(h.Extra, func(a, b Field) int { return ipld.CompareKeys(a.Key, b.Key) })
	return h, nil
}

func principal(nd datamodel.Node, key string) (did.DID, error) {
	v, err := nd.LookupByString(key)
	if err != nil || v.IsAbsent() {
		return did.Undef, failure.SchemaError(key, nil, "missing required field")
	}
	s, err := v.AsString()
	if err != nil {
		return did.Undef, failure.SchemaError(key, err, "expected string")
	}
	id, err := did.Parse(s)
	if err != nil {
		return did.Undef, failure.SchemaError(key, err, "invalid DID")
	}
	return id, nil
}

// Claims binds the payload claim map to the JWT payload model.
func (t *Token) Claims() (pdm.PayloadModel, error) {
	return pdm.Bind(t.Payload)
}

// Extra returns the payload claims with no declared field, in DAG-CBOR key
// order.
func (t *Token) Extra() ([]pdm.Claim, error) {
	return pdm.Extra(t.Payload)
}

// UCAN rebuilds the native claim set of the token. Proofs are parsed into
// links and the signature is prefixed with the varsig code of `alg`.
func (t *Token) UCAN() (*udm.UCANModel, error) {
	claims, err := t.Claims()
	if err != nil {
		return nil, err
	}
	code, err := signature.NameCode(t.Header.Alg)
	if err != nil {
		return nil, failure.SchemaError(HeaderSegment+".alg", err, "unsupported algorithm")
	}
	prf := make([]ipld.Link, 0, len(claims.Prf))
	for i, s := range claims.Prf {
		c, err := cid.Parse(s)
		if err != nil {
			return nil, failure.SchemaError(fmt.Sprintf("prf[%d]", i), err, "parsing CID")
		}
		prf = append(prf, cidlink.Link{Cid: c})
	}
	return &udm.UCANModel{
		V:   t.Header.Ucv,
		Iss: t.Issuer,
		Aud: t.Audience,
		Att: claims.Att,
		Exp: claims.Exp,
		Prf: prf,
		S:   signature.NewSignature(code, t.Signature).Bytes(),
		Fct: claims.Fct,
		Nnc: claims.Nnc,
		Nbf: claims.Nbf,
	}, nil
}

// Format re-serializes the token, stripping any base64url padding.
func (t *Token) Format() string {
	segs := make([]string, len(t.segments))
	for i, s := range t.segments {
		segs[i] = strings.TrimRight(s, "=")
	}
	return strings.Join(segs, ".")
}
