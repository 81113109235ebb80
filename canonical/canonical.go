// Package canonical encodes UCAN claim sets and CACAO envelopes as canonical
// DAG-CBOR blocks.
//
// Struct fields are written in schema declaration order, absent optional
// fields are omitted, and free form maps (caveats, facts, signature metadata)
// are written in DAG-CBOR key order. Payload claims with no declared field
// follow the declared ones, also in DAG-CBOR key order. DID fields are
// written as byte strings or text strings according to the DID
// representation.
package canonical

import (
	"fmt"
	"slices"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	"github.com/storacha/go-cacao/cacao"
	cdm "github.com/storacha/go-cacao/cacao/datamodel"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/ipld/block"
	"github.com/storacha/go-cacao/core/ipld/codec/cbor"
	"github.com/storacha/go-cacao/core/ipld/hash/sha256"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/did"
	pdm "github.com/storacha/go-cacao/ucan/datamodel/payload"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

// EncodeUCAN encodes a native UCAN claim set.
func EncodeUCAN(model *udm.UCANModel, rep did.Representation) ([]byte, error) {
	if err := checkRepresentation(rep); err != nil {
		return nil, err
	}
	if err := validateUCAN(model); err != nil {
		return nil, err
	}
	m := *model
	att, err := normalizeCapabilities(m.Att)
	if err != nil {
		return nil, err
	}
	m.Att = att
	if m.Fct, err = normalizeFacts(m.Fct); err != nil {
		return nil, err
	}
	if m.Prf == nil {
		m.Prf = []ipld.Link{}
	}
	m.Nnc = normalizeNonce(m.Nnc)
	m.Nbf = normalizeNotBefore(m.Nbf)
	return encode("UCAN", &m, udm.Type(rep), udm.Options(rep)...)
}

// EncodeCACAO encodes an envelope. The representation must be the one the
// envelope was remapped with.
func EncodeCACAO(env *cacao.Envelope, rep did.Representation) ([]byte, error) {
	if err := checkRepresentation(rep); err != nil {
		return nil, err
	}
	if env.DIDRepresentation() != rep {
		return nil, failure.PolicyMismatch("envelope remapped for %s DIDs, encoding requested %s DIDs", env.DIDRepresentation(), rep)
	}
	model := env.Model()
	if err := validateCACAO(model); err != nil {
		return nil, err
	}
	m := *model
	att, err := normalizeCapabilities(m.P.Att)
	if err != nil {
		return nil, err
	}
	m.P.Att = att
	if m.P.Fct, err = normalizeFacts(m.P.Fct); err != nil {
		return nil, err
	}
	m.P.Nnc = normalizeNonce(m.P.Nnc)
	m.P.Nbf = normalizeNotBefore(m.P.Nbf)
	if m.S.M != nil {
		md, err := normalizeMetadata(*m.S.M)
		if err != nil {
			return nil, err
		}
		m.S.M = &md
	}
	extra, err := normalizeExtra(env.Extra())
	if err != nil {
		return nil, err
	}
	nd, err := cacao.NewEnvelope(&m, rep, extra...).Node()
	if err != nil {
		return nil, failure.UnencodableValue("CACAO", err, "wrapping envelope")
	}
	return encodeNode("CACAO", nd)
}

func encodeNode(name string, nd datamodel.Node) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.UnencodableValue(name, fmt.Errorf("%v", r), "encoding %s", name)
		}
	}()
	b, err = cbor.EncodeNode(nd)
	if err != nil {
		return nil, failure.UnencodableValue(name, err, "encoding %s", name)
	}
	return b, nil
}

func encode(name string, val any, typ schema.Type, opts ...bindnode.Option) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.UnencodableValue(name, fmt.Errorf("%v", r), "encoding %s", name)
		}
	}()
	b, err = cbor.Encode(val, typ, opts...)
	if err != nil {
		return nil, failure.UnencodableValue(name, err, "encoding %s", name)
	}
	return b, nil
}

// DecodeUCAN decodes a native UCAN block.
func DecodeUCAN(b []byte, rep did.Representation) (*udm.UCANModel, error) {
	if err := checkRepresentation(rep); err != nil {
		return nil, err
	}
	nd, err := cbor.DecodeNode(b)
	if err != nil {
		return nil, failure.EncodingError("UCAN", err, "decoding DAG-CBOR")
	}
	model, err := ipld.Rebind[udm.UCANModel](nd, udm.Type(rep), udm.Options(rep)...)
	if err != nil {
		return nil, failure.SchemaError("UCAN", err, "binding %s DID claims", rep)
	}
	return &model, nil
}

// DecodeCACAO decodes a CACAO envelope block.
func DecodeCACAO(b []byte, rep did.Representation) (*cacao.Envelope, error) {
	if err := checkRepresentation(rep); err != nil {
		return nil, err
	}
	nd, err := cbor.DecodeNode(b)
	if err != nil {
		return nil, failure.EncodingError("CACAO", err, "decoding DAG-CBOR")
	}
	nd, extra, err := splitPayload(nd)
	if err != nil {
		return nil, err
	}
	model, err := ipld.Rebind[cdm.CACAOModel](nd, cdm.Type(rep), cdm.Options(rep)...)
	if err != nil {
		return nil, failure.SchemaError("CACAO", err, "binding %s DID envelope", rep)
	}
	return cacao.NewEnvelope(&model, rep, extra...), nil
}

// splitPayload moves the undeclared claims of the envelope payload out of
// the envelope node.
func splitPayload(nd datamodel.Node) (datamodel.Node, []pdm.Claim, error) {
	if nd.Kind() != datamodel.Kind_Map {
		return nil, nil, failure.SchemaError("CACAO", nil, "expected map, got %s", nd.Kind())
	}
	p, err := nd.LookupByString("p")
	if err != nil || p.Kind() != datamodel.Kind_Map {
		// leave it to the schema to report
		return nd, nil, nil
	}
	declared, extra, err := pdm.Split(p)
	if err != nil {
		return nil, nil, failure.SchemaError("p", err, "splitting claims")
	}
	if len(extra) == 0 {
		return nd, nil, nil
	}
	out, err := qp.BuildMap(basicnode.Prototype.Map, nd.Length(), func(ma datamodel.MapAssembler) {
		it := nd.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				panic(err)
			}
			key, _ := k.AsString()
			if key == "p" {
				v = declared
			}
			qp.MapEntry(ma, key, qp.Node(v))
		}
	})
	if err != nil {
		return nil, nil, failure.SchemaError("CACAO", err, "rebuilding envelope")
	}
	return out, extra, nil
}

// NewBlock addresses encoded bytes with a CIDv1 (dag-cbor, sha2-256).
func NewBlock(b []byte) (block.Block, error) {
	return block.Encode(b, cbor.Code, sha256.Hasher)
}

func normalizeCapabilities(caps []udm.CapabilityModel) ([]udm.CapabilityModel, error) {
	out := make([]udm.CapabilityModel, 0, len(caps))
	for i, c := range caps {
		sc, err := c.Sorted()
		if err != nil {
			return nil, failure.UnencodableValue(fmt.Sprintf("att[%d]", i), err, "sorting capability")
		}
		out = append(out, sc)
	}
	return out, nil
}

func normalizeExtra(extra []pdm.Claim) ([]pdm.Claim, error) {
	out := make([]pdm.Claim, 0, len(extra))
	seen := map[string]bool{}
	for _, c := range extra {
		if slices.Contains(pdm.Fields, c.Key) || seen[c.Key] {
			return nil, failure.UnencodableValue("p."+c.Key, nil, "duplicate payload claim")
		}
		seen[c.Key] = true
		if c.Value == nil {
			return nil, failure.UnencodableValue("p."+c.Key, nil, "missing value")
		}
		v, err := ipld.SortNode(c.Value)
		if err != nil {
			return nil, failure.UnencodableValue("p."+c.Key, err, "sorting claim")
		}
		out = append(out, pdm.Claim{Key: c.Key, Value: v})
	}
	slices.SortFunc(out, func(a, b pdm.Claim) int { return ipld.CompareKeys(a.Key, b.Key) })
	return out, nil
}

func normalizeFacts(fcts []udm.FactModel) ([]udm.FactModel, error) {
	if len(fcts) == 0 {
		return nil, nil
	}
	out := make([]udm.FactModel, 0, len(fcts))
	for i, f := range fcts {
		vals, err := sortValues(f.Keys, f.Values)
		if err != nil {
			return nil, failure.UnencodableValue(fmt.Sprintf("fct[%d]", i), err, "sorting fact")
		}
		keys := append([]string{}, f.Keys...)
		ipld.SortKeys(keys)
		out = append(out, udm.FactModel{Keys: keys, Values: vals})
	}
	return out, nil
}

func normalizeMetadata(m cdm.MetadataModel) (cdm.MetadataModel, error) {
	vals, err := sortValues(m.Keys, m.Values)
	if err != nil {
		return cdm.MetadataModel{}, failure.UnencodableValue("s.m", err, "sorting metadata")
	}
	keys := append([]string{}, m.Keys...)
	ipld.SortKeys(keys)
	return cdm.MetadataModel{Keys: keys, Values: vals}, nil
}

func sortValues(keys []string, values map[string]datamodel.Node) (map[string]datamodel.Node, error) {
	out := make(map[string]datamodel.Node, len(keys))
	for _, k := range keys {
		v, ok := values[k]
		if !ok || v == nil {
			return nil, fmt.Errorf("missing value for key %q", k)
		}
		sv, err := ipld.SortNode(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = sv
	}
	return out, nil
}

func normalizeNonce(nnc *string) *string {
	if nnc == nil || *nnc == "" {
		return nil
	}
	return nnc
}

func normalizeNotBefore(nbf *uint64) *uint64 {
	if nbf == nil || *nbf == 0 {
		return nil
	}
	return nbf
}
