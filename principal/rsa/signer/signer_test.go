package signer

import (
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

func TestVerify(t *testing.T) {
	s0 := helpers.Must(Generate())

	msg := []byte("testy")
	sig := s0.Sign(msg)

	require.True(t, s0.Verifier().Verify(msg, sig))
	require.False(t, s0.Verifier().Verify([]byte("other"), sig))
}

func TestPublicKeyBytesShorterThanDID(t *testing.T) {
	s := helpers.Must(Generate())
	require.Less(t, len(s.DID().Bytes()), len(s.DID().String()))
}
