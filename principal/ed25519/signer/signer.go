package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/principal"
	"github.com/storacha/go-cacao/principal/ed25519/verifier"
	"github.com/storacha/go-cacao/principal/multiformat"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
)

const Code = uint64(multicodec.Ed25519Priv)
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

var privateTagSize = varint.UvarintSize(Code)
var publicTagSize = varint.UvarintSize(verifier.Code)

const keySize = 32

var size = privateTagSize + keySize + publicTagSize + keySize
var pubKeyOffset = privateTagSize + keySize

func Generate() (principal.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating Ed25519 key: %w", err)
	}
	return FromRaw(priv)
}

// FromRaw creates a signer from raw ed25519 secret key material: the 64 byte
// private key (seed followed by public key) or the 32 byte seed alone.
func FromRaw(b []byte) (principal.Signer, error) {
	var priv ed25519.PrivateKey
	switch len(b) {
	case ed25519.PrivateKeySize:
		priv = ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
			return nil, fmt.Errorf("public key does not match private key seed")
		}
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(b)
	default:
		return nil, fmt.Errorf("invalid length: %d wanted: %d or %d", len(b), ed25519.PrivateKeySize, ed25519.SeedSize)
	}
	s := make(Ed25519Signer, size)
	varint.PutUvarint(s, Code)
	copy(s[privateTagSize:], priv[:ed25519.SeedSize])
	varint.PutUvarint(s[pubKeyOffset:], verifier.Code)
	copy(s[pubKeyOffset+publicTagSize:], priv[ed25519.SeedSize:])
	return s, nil
}

func Parse(str string) (principal.Signer, error) {
	_, bytes, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return Decode(bytes)
}

func Format(signer principal.Signer) (string, error) {
	return multibase.Encode(multibase.Base64pad, signer.Encode())
}

func Decode(b []byte) (principal.Signer, error) {
	if len(b) != size {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), size)
	}

	if _, err := multiformat.UntagWith(Code, b, 0); err != nil {
		return nil, fmt.Errorf("reading private key codec: %w", err)
	}

	_, err := verifier.Decode(b[pubKeyOffset:])
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	s := make(Ed25519Signer, size)
	copy(s, b)

	return s, nil
}

type Ed25519Signer []byte

func (s Ed25519Signer) Code() uint64 {
	return Code
}

func (s Ed25519Signer) SignatureCode() uint64 {
	return SignatureCode
}

func (s Ed25519Signer) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s Ed25519Signer) Verifier() principal.Verifier {
	return verifier.Ed25519Verifier(s[pubKeyOffset:])
}

func (s Ed25519Signer) DID() did.DID {
	id, _ := did.Decode(s[pubKeyOffset:])
	return id
}

func (s Ed25519Signer) Encode() []byte {
	return s
}

func (s Ed25519Signer) Raw() []byte {
	pk := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(pk[0:ed25519.SeedSize], s[privateTagSize:pubKeyOffset])
	copy(pk[ed25519.SeedSize:], s[pubKeyOffset+publicTagSize:pubKeyOffset+publicTagSize+keySize])
	return pk
}

func (s Ed25519Signer) Sign(msg []byte) signature.Signature {
	return signature.NewSignature(SignatureCode, ed25519.Sign(s.Raw(), msg))
}
