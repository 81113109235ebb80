package cbor

import (
	"bytes"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	"github.com/multiformats/go-multicodec"
)

const Code = uint64(multicodec.DagCbor)

// ordered writes maps in the order the node iterates them. For schema typed
// structs that is the declared field order; dagcbor.Encode would instead
// re-sort every map by key.
var ordered = dagcbor.EncodeOptions{
	AllowLinks:  true,
	MapSortMode: codec.MapSortMode_None,
}

// Encode marshals a bound Go value to DAG-CBOR with struct fields in schema
// declaration order and minimal length integer, string and bytes heads.
func Encode(val any, typ schema.Type, opts ...bindnode.Option) ([]byte, error) {
	return ipld.Marshal(ordered.Encode, val, typ, opts...)
}

func Decode(b []byte, bind any, typ schema.Type, opts ...bindnode.Option) error {
	_, err := ipld.Unmarshal(b, dagcbor.Decode, bind, typ, opts...)
	return err
}

// EncodeNode encodes an untyped node, preserving its map iteration order.
func EncodeNode(n datamodel.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := ordered.Encode(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNode decodes DAG-CBOR bytes into an untyped node.
func DecodeNode(b []byte) (datamodel.Node, error) {
	np := basicnode.Prototype.Any
	nb := np.NewBuilder()
	err := dagcbor.Decode(nb, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return nb.Build(), nil
}
