package ipld

import (
	"github.com/ipld/go-ipld-prime"
	"github.com/storacha/go-cacao/core/ipld/block"
)

type Link = ipld.Link
type Block = block.Block
type Node = ipld.Node
