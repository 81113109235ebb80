package signature

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// Varsig codes for the supported signature algorithms.
// https://github.com/ucan-wg/ucan-ipld/#25-signature
const (
	EdDSA = 0xd0ed
	RS256 = 0xd01205
)

// NonStandard is the code of signatures whose algorithm has no assigned
// varsig code.
const NonStandard = 0xd000

var codeNames = map[uint64]string{
	EdDSA: "EdDSA",
	RS256: "RS256",
}

// CodeName returns the JWT `alg` name for a varsig code.
func CodeName(code uint64) (string, error) {
	name, ok := codeNames[code]
	if !ok {
		return "", fmt.Errorf("unknown signature algorithm code 0x%x", code)
	}
	return name, nil
}

// NameCode returns the varsig code for a JWT `alg` name.
func NameCode(name string) (uint64, error) {
	for code, n := range codeNames {
		if n == name {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown signature algorithm %q", name)
}

// Signature is a varsig encoded signature: the algorithm code and the raw
// signature length, each as a varint, followed by the raw signature.
type Signature interface {
	Code() uint64
	Size() uint64
	Bytes() []byte
	// Raw signature (without signature algorithm info).
	Raw() []byte
}

func NewSignature(code uint64, raw []byte) Signature {
	cl := varint.UvarintSize(code)
	rl := varint.UvarintSize(uint64(len(raw)))
	sig := make(signature, cl+rl+len(raw))
	varint.PutUvarint(sig, code)
	varint.PutUvarint(sig[cl:], uint64(len(raw)))
	copy(sig[cl+rl:], raw)
	return sig
}

func Encode(s Signature) []byte {
	return s.Bytes()
}

// Decode reads a varsig encoded signature, checking that the declared size
// matches the bytes that follow.
func Decode(b []byte) (Signature, error) {
	r := bytes.NewReader(b)
	code, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("reading signature code: %w", err)
	}
	size, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("reading signature size: %w", err)
	}
	if uint64(r.Len()) != size {
		return nil, fmt.Errorf("signature size mismatch: declared %d, got %d", size, r.Len())
	}
	if code == 0 {
		return nil, fmt.Errorf("missing signature code")
	}
	return signature(b), nil
}

type signature []byte

func (s signature) Code() uint64 {
	c, _ := varint.ReadUvarint(bytes.NewReader(s))
	return c
}

func (s signature) Size() uint64 {
	n, _ := varint.ReadUvarint(bytes.NewReader(s[varint.UvarintSize(s.Code()):]))
	return n
}

func (s signature) Raw() []byte {
	cl := varint.UvarintSize(s.Code())
	rl := varint.UvarintSize(s.Size())
	return s[cl+rl:]
}

func (s signature) Bytes() []byte {
	return s
}
