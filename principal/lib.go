package principal

import (
	"github.com/storacha/go-cacao/ucan"
)

// Signer is a principal holding secret key material. It can issue tokens and
// exposes both identity forms through its DID: `DID().String()` (the textual
// identity) and `DID().Bytes()` (the multicodec tagged public key).
type Signer interface {
	ucan.Signer
	Code() uint64
	Verifier() Verifier
	Encode() []byte
	// Raw encodes the bytes of the private key without multiformats tags.
	Raw() []byte
}

// Verifier is a principal holding only public key material.
type Verifier interface {
	ucan.Verifier
	Code() uint64
	Encode() []byte
	// Raw encodes the bytes of the public key without multiformats tags.
	Raw() []byte
}
