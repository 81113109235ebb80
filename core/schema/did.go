package schema

import (
	"errors"
	"fmt"

	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/storacha/go-cacao/did"
)

// DIDTypeName is the schema type name that DID principal fields are declared
// with. Its kind depends on the representation the schema is compiled for.
const DIDTypeName = "DID"

var errUndefinedDID = errors.New("undefined DID")

// DIDType returns the declaration of the DID type for a representation.
func DIDType(rep did.Representation) (string, error) {
	switch rep {
	case did.Bytes:
		return "type DID bytes", nil
	case did.String:
		return "type DID string", nil
	}
	return "", fmt.Errorf("unknown DID representation: %d", int(rep))
}

// DIDOption returns the bindnode converter that binds [did.DID] Go values to
// the DID schema type for a representation.
func DIDOption(rep did.Representation) bindnode.Option {
	if rep == did.String {
		return bindnode.NamedStringConverter(DIDTypeName, func(s string) (interface{}, error) {
			id, err := did.Parse(s)
			if err != nil {
				return nil, err
			}
			return &id, nil
		}, func(v interface{}) (string, error) {
			id := v.(*did.DID)
			if id == nil || !id.Defined() {
				return "", errUndefinedDID
			}
			return id.String(), nil
		})
	}
	return bindnode.NamedBytesConverter(DIDTypeName, func(b []byte) (interface{}, error) {
		id, err := did.Decode(b)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}, func(v interface{}) ([]byte, error) {
		id := v.(*did.DID)
		if id == nil || !id.Defined() {
			return nil, errUndefinedDID
		}
		return id.Bytes(), nil
	})
}
