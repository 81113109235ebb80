package signer

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/storacha/go-cacao/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestGenerateEncodeDecode(t *testing.T) {
	s0 := helpers.Must(Generate())
	s1 := helpers.Must(Decode(s0.Encode()))
	require.Equal(t, s0.DID().String(), s1.DID().String())
}

func TestGenerateFormatParse(t *testing.T) {
	s0 := helpers.Must(Generate())
	str := helpers.Must(Format(s0))
	s1 := helpers.Must(Parse(str))
	require.Equal(t, s0.DID().String(), s1.DID().String())
}

func TestFromRaw(t *testing.T) {
	t.Run("secret key material", func(t *testing.T) {
		secret := helpers.Must(base64.StdEncoding.DecodeString("U+bzp2GaFQHso587iSFWPSeCzbSfn/CbNHEz7ilKRZ1UQMmMS7qq4UhTzKn3X9Nj/4xgrwa+UqhMOeo4Ki8JUw=="))
		s := helpers.Must(FromRaw(secret))
		require.Equal(t, "did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi", s.DID().String())
		require.Equal(t, secret, s.Raw())
	})

	t.Run("seed", func(t *testing.T) {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		s := helpers.Must(FromRaw(priv.Seed()))
		require.Equal(t, []byte(priv), s.Raw())
	})

	t.Run("mismatched public key", func(t *testing.T) {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		bad := append([]byte{}, priv...)
		bad[63] ^= 0xff
		_, err = FromRaw(bad)
		require.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	s0 := helpers.Must(Generate())

	msg := []byte("testy")
	sig := s0.Sign(msg)

	require.True(t, s0.Verifier().Verify(msg, sig))
}

func TestSignerRaw(t *testing.T) {
	s := helpers.Must(Generate())

	msg := []byte{1, 2, 3}
	raw := s.Raw()
	sig := ed25519.Sign(raw, msg)

	require.Equal(t, s.Sign(msg).Raw(), sig)
}

func TestPublicKeyBytes(t *testing.T) {
	s := helpers.Must(Generate())
	require.Equal(t, s.Verifier().Encode(), s.DID().Bytes())
	require.Len(t, s.DID().Bytes(), 34)
}
