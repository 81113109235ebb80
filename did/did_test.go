package did

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDIDKey(t *testing.T) {
	str := "did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z"
	d, err := Parse(str)
	require.NoError(t, err)
	require.Equal(t, str, d.String())
}

func TestDecodeDIDKey(t *testing.T) {
	str := "did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z"
	d0, err := Parse(str)
	require.NoError(t, err)

	// multicodec tag (2 bytes) + 32 byte Ed25519 public key
	require.Len(t, d0.Bytes(), 34)
	require.Equal(t, []byte{0xed, 0x01}, d0.Bytes()[:2])

	d1, err := Decode(d0.Bytes())
	require.NoError(t, err)
	require.Equal(t, str, d1.String())
}

func TestDecodeOtherKeyTypes(t *testing.T) {
	for _, tc := range []struct {
		name string
		tag  []byte
		size int
	}{
		{"secp256k1", []byte{0xe7, 0x01}, 33},
		{"P-256", []byte{0x80, 0x24}, 33},
		{"unknown key type", []byte{0xf0, 0x01}, 20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := append(append([]byte{}, tc.tag...), make([]byte, tc.size)...)
			b[len(tc.tag)] = 0x02
			d, err := Decode(b)
			require.NoError(t, err)
			require.Equal(t, b, d.Bytes())

			str := d.String()
			require.True(t, strings.HasPrefix(str, KeyPrefix), str)
			parsed, err := Parse(str)
			require.NoError(t, err)
			require.True(t, d == parsed)
		})
	}
}

func TestDecodeKeyLength(t *testing.T) {
	_, err := Decode([]byte{0xed, 0x01})
	require.Error(t, err)

	_, err = Decode(append([]byte{0xed, 0x01}, make([]byte, 31)...))
	require.Error(t, err)

	_, err = Decode(append([]byte{0xe7, 0x01}, make([]byte, 32)...))
	require.Error(t, err)

	_, err = Decode([]byte{0xf0, 0x01})
	require.Error(t, err)

	_, err = Decode([]byte{0x9d, 0x1a})
	require.Error(t, err)

	_, err = Encode([]byte{0xed, 0x01})
	require.Error(t, err)
}

func TestParseDIDWeb(t *testing.T) {
	str := "did:web:up.web3.storage"
	d, err := Parse(str)
	require.NoError(t, err)
	require.Equal(t, str, d.String())
}

func TestDecodeDIDWeb(t *testing.T) {
	str := "did:web:up.web3.storage"
	d0, err := Parse(str)
	require.NoError(t, err)

	d1, err := Decode(d0.Bytes())
	require.NoError(t, err)
	require.Equal(t, str, d1.String())
}

func TestBytesNeverLongerThanString(t *testing.T) {
	for _, str := range []string{
		"did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z",
		"did:web:up.web3.storage",
		"did:x:y",
	} {
		d, err := Parse(str)
		require.NoError(t, err)
		require.LessOrEqual(t, len(d.Bytes()), len(d.String()), str)
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not a did")
	require.Error(t, err)

	_, err = Parse("did:")
	require.Error(t, err)

	_, err = Parse("did:key:zNotBase58!")
	require.Error(t, err)

	_, err = Decode([]byte{})
	require.Error(t, err)
}

func TestEquivalence(t *testing.T) {
	u0 := DID{}
	u1 := Undef
	require.Equal(t, u0, u1)
	require.False(t, u0.Defined())

	d0, err := Parse("did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z")
	require.NoError(t, err)

	d1, err := Parse("did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z")
	require.NoError(t, err)

	require.True(t, d0 == d1)
}

func TestRoundtripJSON(t *testing.T) {
	id, err := Parse("did:key:z6Mkod5Jr3yd5SC7UDueqK4dAAw5xYJYjksy722tA9Boxc4z")
	require.NoError(t, err)

	type Object struct {
		ID                DID  `json:"id"`
		UndefID           DID  `json:"undef_id"`
		OptionalPresentID *DID `json:"optional_present_id"`
		OptionalAbsentID  *DID `json:"optional_absent_id"`
	}
	obj := Object{
		ID:                id,
		UndefID:           Undef,
		OptionalPresentID: &id,
		OptionalAbsentID:  nil,
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)

	var out Object
	err = json.Unmarshal(data, &out)
	require.NoError(t, err)

	require.Equal(t, obj.ID, out.ID)
	require.Equal(t, obj.UndefID, out.UndefID)
	require.Equal(t, obj.OptionalPresentID.String(), out.OptionalPresentID.String())
	require.Nil(t, out.OptionalAbsentID)
}

func TestRepresentation(t *testing.T) {
	for _, rep := range Representations {
		parsed, err := ParseRepresentation(rep.String())
		require.NoError(t, err)
		require.Equal(t, rep, parsed)
	}

	_, err := ParseRepresentation("base64")
	require.Error(t, err)

	b, err := json.Marshal(map[string]Representation{"r": String})
	require.NoError(t, err)
	require.JSONEq(t, `{"r":"string"}`, string(b))
}
