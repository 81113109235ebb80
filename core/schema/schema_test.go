package schema

import (
	"testing"

	"github.com/ipld/go-ipld-prime/schema"
	"github.com/storacha/go-cacao/core/ipld/codec/cbor"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/testing/helpers"
	"github.com/stretchr/testify/require"
)

type principalModel struct {
	Id did.DID
}

var loader = NewLoader([]byte(`
	type Principal struct {
		id DID
	}
`))

func TestDIDRepresentation(t *testing.T) {
	id := helpers.Must(did.Parse("did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi"))

	t.Run("bytes", func(t *testing.T) {
		typ := loader.Type(did.Bytes, "Principal")
		b, err := cbor.Encode(&principalModel{id}, typ, DIDOption(did.Bytes))
		require.NoError(t, err)

		v := helpers.Must(cbor.Inspect(b))
		require.Equal(t, id.Bytes(), v.(map[string]any)["id"])

		var out principalModel
		require.NoError(t, cbor.Decode(b, &out, typ, DIDOption(did.Bytes)))
		require.Equal(t, id, out.Id)
	})

	t.Run("string", func(t *testing.T) {
		typ := loader.Type(did.String, "Principal")
		b, err := cbor.Encode(&principalModel{id}, typ, DIDOption(did.String))
		require.NoError(t, err)

		v := helpers.Must(cbor.Inspect(b))
		require.Equal(t, id.String(), v.(map[string]any)["id"])

		var out principalModel
		require.NoError(t, cbor.Decode(b, &out, typ, DIDOption(did.String)))
		require.Equal(t, id, out.Id)
	})

	t.Run("undefined", func(t *testing.T) {
		typ := loader.Type(did.Bytes, "Principal")
		_, err := cbor.Encode(&principalModel{}, typ, DIDOption(did.Bytes))
		require.Error(t, err)
	})

	t.Run("unknown representation", func(t *testing.T) {
		_, err := loader.TypeSystem(did.Representation(7))
		require.Error(t, err)
	})
}

func TestDIDType(t *testing.T) {
	kinds := map[did.Representation]schema.TypeKind{
		did.Bytes:  schema.TypeKind_Bytes,
		did.String: schema.TypeKind_String,
	}
	for _, rep := range did.Representations {
		ts, err := loader.TypeSystem(rep)
		require.NoError(t, err)
		typ := ts.TypeByName(DIDTypeName)
		require.NotNil(t, typ)
		require.Equal(t, kinds[rep], typ.TypeKind())
	}
}
