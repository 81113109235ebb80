package ipld

import (
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
)

// Rebind takes a Node and binds it to the Go type according to the passed schema.
func Rebind[T any](nd datamodel.Node, typ schema.Type, opts ...bindnode.Option) (ptrVal T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	if typedNode, ok := nd.(schema.TypedNode); ok {
		nd = typedNode.Representation()
	}

	var nilbind T
	np := bindnode.Prototype(&nilbind, typ, opts...)
	nb := np.Representation().NewBuilder()
	err = nb.AssignNode(nd)
	if err != nil {
		return
	}
	rnd := nb.Build()
	ptrVal = *bindnode.Unwrap(rnd).(*T)
	return
}
