package cacao

import (
	"encoding/base64"
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/storacha/go-cacao/did"
)

// JSON renders an envelope as DAG-JSON for display. DIDs are shown as text
// and the signature `s.s` as base64url, whatever the envelope's policy.
func JSON(env *Envelope) ([]byte, error) {
	nd, err := env.node(did.String)
	if err != nil {
		return nil, err
	}
	sig := base64.RawURLEncoding.EncodeToString(env.Model().S.S)
	out, err := replaceEntry(nd, "s", func(s datamodel.Node) datamodel.Node {
		return must(replaceEntry(s, "s", func(datamodel.Node) datamodel.Node {
			return basicnode.NewString(sig)
		}))
	})
	if err != nil {
		return nil, fmt.Errorf("building envelope view: %w", err)
	}
	return json.EncodeNode(out)
}

// replaceEntry copies a map node, passing the value under key through fn.
func replaceEntry(nd datamodel.Node, key string, fn func(datamodel.Node) datamodel.Node) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Map, nd.Length(), func(ma datamodel.MapAssembler) {
		it := nd.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				panic(err)
			}
			ks, _ := k.AsString()
			if ks == key {
				v = fn(v)
			}
			qp.MapEntry(ma, ks, qp.Node(v))
		}
	})
}

func copyEntries(ma datamodel.MapAssembler, nd datamodel.Node) {
	it := nd.MapIterator()
	for !it.Done() {
		k, v, err := it.Next()
		if err != nil {
			panic(err)
		}
		ks, _ := k.AsString()
		qp.MapEntry(ma, ks, qp.Node(v))
	}
}

func must(nd datamodel.Node, err error) datamodel.Node {
	if err != nil {
		panic(err)
	}
	return nd
}
