package did

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
)

const Prefix = "did:"
const KeyPrefix = "did:key:"

// DIDCore is the multicodec tag for DIDs that are not backed by a known
// public key type. The method specific text follows the tag verbatim.
const DIDCore = 0x0d1d
const Ed25519 = uint64(multicodec.Ed25519Pub)
const RSA = uint64(multicodec.RsaPub)

var MethodOffset = varint.UvarintSize(uint64(DIDCore))

// DID is a decentralized identifier. It stores the binary (multiformat)
// representation so that two DIDs can be compared with ==.
type DID struct {
	str string
}

// Undef can be used to represent a nil or undefined DID, using DID{}
// directly is also acceptable.
var Undef = DID{}

// Defined reports whether the DID is anything other than [Undef].
func (d DID) Defined() bool {
	return d.str != ""
}

// Bytes returns the binary representation of the DID. For did:key this is the
// multicodec tagged public key.
func (d DID) Bytes() []byte {
	if !d.Defined() {
		return nil
	}
	return []byte(d.str)
}

// DID returns itself so that a DID can be used wherever a principal is
// expected.
func (d DID) DID() DID {
	return d
}

// String formats the decentralized identifier document (DID) into a string.
func (d DID) String() string {
	if !d.Defined() {
		return ""
	}
	str, err := Encode(d.Bytes())
	if err != nil {
		return ""
	}
	return str
}

func (d DID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DID) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Undef
		return nil
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// keyLengths are the public key sizes of the did:key types with a fixed
// length. Other key types are carried as opaque bytes.
var keyLengths = map[uint64]int{
	Ed25519:                         32,
	uint64(multicodec.X25519Pub):    32,
	uint64(multicodec.Secp256k1Pub): 33,
	uint64(multicodec.P256Pub):      33,
	uint64(multicodec.P384Pub):      49,
}

// Encode formats the binary representation of a DID as a string.
func Encode(b []byte) (string, error) {
	code, err := check(b)
	if err != nil {
		return "", err
	}
	if code == DIDCore {
		return Prefix + string(b[MethodOffset:]), nil
	}
	str, err := multibase.Encode(multibase.Base58BTC, b)
	if err != nil {
		return "", fmt.Errorf("encoding multibase: %w", err)
	}
	return KeyPrefix + str, nil
}

// Decode reads a DID from its binary representation. Any multicodec tag
// other than [DIDCore] is read as a did:key public key.
func Decode(b []byte) (DID, error) {
	if _, err := check(b); err != nil {
		return Undef, err
	}
	return DID{str: string(b)}, nil
}

func check(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("decoding DID: no bytes")
	}
	code, n, err := varint.FromUvarint(b)
	if err != nil {
		return 0, fmt.Errorf("reading DID multicodec: %w", err)
	}
	rest := len(b) - n
	if code == DIDCore {
		if rest == 0 {
			return 0, fmt.Errorf("missing DID method")
		}
		return code, nil
	}
	if want, ok := keyLengths[code]; ok && rest != want {
		return 0, fmt.Errorf("invalid %s key length: %d, expected %d", multicodec.Code(code), rest, want)
	}
	if rest == 0 {
		return 0, fmt.Errorf("missing public key for multicodec 0x%x", code)
	}
	return code, nil
}

// Parse reads a DID from its string representation.
func Parse(str string) (DID, error) {
	if !strings.HasPrefix(str, Prefix) {
		return Undef, fmt.Errorf("must start with 'did:'")
	}

	if strings.HasPrefix(str, KeyPrefix) {
		code, b, err := multibase.Decode(str[len(KeyPrefix):])
		if err != nil {
			return Undef, fmt.Errorf("decoding multibase: %w", err)
		}
		if code != multibase.Base58BTC {
			return Undef, fmt.Errorf("not Base58BTC encoded")
		}
		return Decode(b)
	}

	method := str[len(Prefix):]
	if method == "" {
		return Undef, fmt.Errorf("missing DID method")
	}
	b := make([]byte, MethodOffset+len(method))
	varint.PutUvarint(b, DIDCore)
	copy(b[MethodOffset:], method)
	return DID{str: string(b)}, nil
}
