package ipld

import (
	"errors"
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
)

// WrapWithRecovery wraps a Go value as an IPLD node using the passed schema
// type, converting a bindnode panic (raised when the Go type and the schema
// disagree) into an error.
func WrapWithRecovery(ptrVal any, typ schema.Type, opts ...bindnode.Option) (nd datamodel.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	nd = bindnode.Wrap(ptrVal, typ, opts...).Representation()
	return
}

func recoveredError(r any) error {
	if asStr, ok := r.(string); ok {
		return errors.New(asStr)
	} else if asErr, ok := r.(error); ok {
		return asErr
	}
	return fmt.Errorf("unknown panic: %v", r)
}
