package payload

import (
	"fmt"
	"slices"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/did"
)

// Bind checks the shape of a decoded JWT payload claim map and binds it to a
// [PayloadModel]. Shape errors are reported as SchemaError failures naming the
// offending claim.
func Bind(nd datamodel.Node) (PayloadModel, error) {
	if nd.Kind() != datamodel.Kind_Map {
		return PayloadModel{}, failure.SchemaError("payload", nil, "expected map, got %s", nd.Kind())
	}
	for _, f := range []struct {
		name string
		kind datamodel.Kind
	}{
		{"iss", datamodel.Kind_String},
		{"aud", datamodel.Kind_String},
		{"att", datamodel.Kind_List},
		{"exp", datamodel.Kind_Int},
	} {
		if _, err := lookup(nd, f.name, f.name, f.kind); err != nil {
			return PayloadModel{}, err
		}
	}
	for _, name := range []string{"iss", "aud"} {
		v, _ := nd.LookupByString(name)
		s, _ := v.AsString()
		if _, err := did.Parse(s); err != nil {
			return PayloadModel{}, failure.SchemaError(name, err, "invalid DID")
		}
	}

	att, _ := nd.LookupByString("att")
	it := att.ListIterator()
	for !it.Done() {
		i, cap, err := it.Next()
		if err != nil {
			return PayloadModel{}, failure.SchemaError("att", err, "iterating capabilities")
		}
		path := fmt.Sprintf("att[%d]", i)
		if cap.Kind() != datamodel.Kind_Map {
			return PayloadModel{}, failure.SchemaError(path, nil, "expected map, got %s", cap.Kind())
		}
		for _, name := range []string{"with", "can"} {
			if _, err := lookup(cap, name, path+"."+name, datamodel.Kind_String); err != nil {
				return PayloadModel{}, err
			}
		}
	}

	declared, _, err := Split(nd)
	if err != nil {
		return PayloadModel{}, failure.SchemaError("payload", err, "splitting claims")
	}
	model, err := ipld.Rebind[PayloadModel](declared, Type(), Options()...)
	if err != nil {
		return PayloadModel{}, failure.SchemaError("payload", err, "binding claims")
	}
	// bindnode leaves an empty optional list nil, which would read as absent.
	if prf, err := nd.LookupByString("prf"); err == nil && !prf.IsAbsent() && model.Prf == nil {
		model.Prf = []string{}
	}
	return model, nil
}

// Extra returns the claims of a payload map that have no declared field, in
// DAG-CBOR key order.
func Extra(nd datamodel.Node) ([]Claim, error) {
	_, extra, err := Split(nd)
	if err != nil {
		return nil, failure.SchemaError("payload", err, "splitting claims")
	}
	return extra, nil
}

// Split separates a payload map into a map of its declared claims, in the
// order they appear, and the remaining claims in DAG-CBOR key order.
func Split(nd datamodel.Node) (datamodel.Node, []Claim, error) {
	if nd.Kind() != datamodel.Kind_Map {
		return nil, nil, fmt.Errorf("expected map, got %s", nd.Kind())
	}
	var extra []Claim
	declared, err := qp.BuildMap(basicnode.Prototype.Map, -1, func(ma datamodel.MapAssembler) {
		it := nd.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				panic(err)
			}
			key, err := k.AsString()
			if err != nil {
				panic(err)
			}
			if !slices.Contains(Fields, key) {
				extra = append(extra, Claim{key, v})
				continue
			}
			qp.MapEntry(ma, key, qp.Node(v))
		}
	})
	if err != nil {
		return nil, nil, err
	}
	slices.SortFunc(extra, func(a, b Claim) int { return ipld.CompareKeys(a.Key, b.Key) })
	return declared, extra, nil
}

func lookup(nd datamodel.Node, key, path string, kind datamodel.Kind) (datamodel.Node, error) {
	v, err := nd.LookupByString(key)
	if err != nil || v.IsAbsent() {
		return nil, failure.SchemaError(path, nil, "missing required field")
	}
	if v.Kind() != kind {
		return nil, failure.SchemaError(path, nil, "expected %s, got %s", kind, v.Kind())
	}
	return v, nil
}
