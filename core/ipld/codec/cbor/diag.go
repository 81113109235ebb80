package cbor

import (
	"reflect"

	fxcbor "github.com/fxamacker/cbor/v2"
)

// decMode decodes into plain Go values for inspection. Maps always decode to
// map[string]any since claim maps only ever have text keys.
var decMode fxcbor.DecMode

func init() {
	var err error
	decMode, err = fxcbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      fxcbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of the bytes.
func Diagnose(data []byte) (string, error) {
	return fxcbor.Diagnose(data)
}

// Inspect decodes CBOR bytes into generic Go values (map[string]any, []any,
// []byte, string, uint64...) independently of the IPLD data model.
func Inspect(data []byte) (any, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// WellFormed reports an error if the bytes are not a single well formed CBOR
// data item.
func WellFormed(data []byte) error {
	return decMode.Wellformed(data)
}
