package decoder

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/principal"
	"github.com/storacha/go-cacao/principal/ed25519/signer"
	"github.com/storacha/go-cacao/principal/ed25519/verifier"
	rsasigner "github.com/storacha/go-cacao/principal/rsa/signer"
	rsaverifier "github.com/storacha/go-cacao/principal/rsa/verifier"
)

// DecodeSigner decodes a multiformat encoded signer back to the appropriate
// implementation (ed25519 or RSA) based on the codec prefix.
func DecodeSigner(encoded []byte) (principal.Signer, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("reading signer codec: %w", err)
	}

	switch code {
	case signer.Code:
		return signer.Decode(encoded)
	case rsasigner.Code:
		return rsasigner.Decode(encoded)
	default:
		return nil, fmt.Errorf("unsupported signer codec: 0x%x", code)
	}
}

// ParseSigner decodes a multibase encoded signer of any supported key type.
func ParseSigner(str string) (principal.Signer, error) {
	_, b, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return DecodeSigner(b)
}

// DecodeVerifier decodes a multiformat encoded verifier back to the
// appropriate implementation (ed25519 or RSA) based on the codec prefix.
func DecodeVerifier(encoded []byte) (principal.Verifier, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("reading verifier codec: %w", err)
	}

	switch code {
	case verifier.Code:
		return verifier.Decode(encoded)
	case rsaverifier.Code:
		return rsaverifier.Decode(encoded)
	default:
		return nil, fmt.Errorf("unsupported verifier codec: 0x%x", code)
	}
}

// ResolveVerifier returns the verifier for a did:key principal.
func ResolveVerifier(id did.DID) (principal.Verifier, error) {
	return DecodeVerifier(id.Bytes())
}
