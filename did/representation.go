package did

import "fmt"

// Representation selects how DID principal fields are written when a claim
// set is encoded: as the binary multiformat bytes or as the `did:` text form.
type Representation int

const (
	// Bytes encodes DIDs as byte strings (the multicodec tagged public key for
	// did:key).
	Bytes Representation = iota
	// String encodes DIDs as UTF-8 text, e.g. `did:key:z6Mk...`.
	String
)

// Representations lists every supported representation in a stable order.
var Representations = []Representation{Bytes, String}

func (r Representation) String() string {
	switch r {
	case Bytes:
		return "bytes"
	case String:
		return "string"
	}
	return fmt.Sprintf("Representation(%d)", int(r))
}

func (r Representation) MarshalText() ([]byte, error) {
	if r != Bytes && r != String {
		return nil, fmt.Errorf("unknown DID representation: %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Representation) UnmarshalText(b []byte) error {
	rep, err := ParseRepresentation(string(b))
	if err != nil {
		return err
	}
	*r = rep
	return nil
}

// ParseRepresentation reads a representation from its name ("bytes" or
// "string").
func ParseRepresentation(s string) (Representation, error) {
	switch s {
	case "bytes":
		return Bytes, nil
	case "string":
		return String, nil
	}
	return 0, fmt.Errorf("unknown DID representation: %q", s)
}
