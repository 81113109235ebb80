package signature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		raw, err := CodeName(EdDSA)
		require.NoError(t, err)

		s := NewSignature(EdDSA, []byte(raw))
		d, err := Decode(Encode(s))
		require.NoError(t, err)
		require.Equal(t, EdDSA, int(d.Code()))
		require.Equal(t, raw, string(d.Raw()))
		require.Equal(t, uint64(len(raw)), d.Size())
	})

	t.Run("ed25519 tag size", func(t *testing.T) {
		s := NewSignature(EdDSA, make([]byte, 64))
		// 3 byte code varint, 1 byte size varint
		require.Len(t, s.Bytes(), 68)
	})

	t.Run("size mismatch", func(t *testing.T) {
		s := NewSignature(EdDSA, make([]byte, 64))
		_, err := Decode(s.Bytes()[:60])
		require.Error(t, err)
	})

	t.Run("names", func(t *testing.T) {
		code, err := NameCode("RS256")
		require.NoError(t, err)
		require.Equal(t, uint64(RS256), code)

		_, err = NameCode("ES256K")
		require.Error(t, err)

		_, err = CodeName(NonStandard)
		require.Error(t, err)
	})
}
