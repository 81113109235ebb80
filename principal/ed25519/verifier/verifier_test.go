package verifier

import (
	"crypto/ed25519"
	"testing"

	"github.com/storacha/go-cacao/ucan/crypto/signature"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	str := "did:key:z6MkgZN5cRgWqesJeaZCEs7eKzyQsfpzmhnSEqTL6FZt56Ym"
	v, err := Parse(str)
	require.NoError(t, err)
	require.Equal(t, str, v.DID().String())
}

func TestFromRaw(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	v, err := FromRaw(pub)
	require.NoError(t, err)

	require.Equal(t, pub, ed25519.PublicKey(v.Raw()))
	require.Equal(t, v.Encode(), v.DID().Bytes())
}

func TestVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	v, err := FromRaw(pub)
	require.NoError(t, err)

	msg := []byte("testy")
	sig := signature.NewSignature(signature.EdDSA, ed25519.Sign(priv, msg))
	require.True(t, v.Verify(msg, sig))
	require.False(t, v.Verify([]byte("other"), sig))

	wrongAlg := signature.NewSignature(signature.RS256, ed25519.Sign(priv, msg))
	require.False(t, v.Verify(msg, wrongAlg))
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte{0xed, 0x01})
	require.Error(t, err)

	b := make([]byte, 34)
	b[0] = 0x12
	b[1] = 0x05
	_, err = Decode(b)
	require.Error(t, err)
}
