package block

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/storacha/go-cacao/core/ipld/hash"
)

// Block is an immutable encoded byte sequence and the content identifier
// derived from it.
type Block interface {
	Link() ipld.Link
	Bytes() []byte
}

type block struct {
	link  ipld.Link
	bytes []byte
}

func (b *block) Link() ipld.Link {
	return b.link
}

func (b *block) Bytes() []byte {
	return b.bytes
}

// NewBlock pairs bytes with a link without checking that the link addresses
// the bytes.
func NewBlock(link ipld.Link, bytes []byte) Block {
	return &block{link, bytes}
}

// Encode derives a CIDv1 for bytes already encoded with the given codec and
// returns the block.
func Encode(bytes []byte, codec uint64, hasher hash.Hasher) (Block, error) {
	d, err := hasher.Sum(bytes)
	if err != nil {
		return nil, fmt.Errorf("hashing block: %w", err)
	}
	return NewBlock(cidlink.Link{Cid: cid.NewCidV1(codec, d.Bytes())}, bytes), nil
}

// Verify checks that the block bytes hash to the block link.
func Verify(b Block) error {
	cl, ok := b.Link().(cidlink.Link)
	if !ok {
		return fmt.Errorf("unsupported link type: %T", b.Link())
	}
	hashed, err := cl.Cid.Prefix().Sum(b.Bytes())
	if err != nil {
		return fmt.Errorf("hashing block: %w", err)
	}
	if !hashed.Equals(cl.Cid) {
		return fmt.Errorf("mismatch in content integrity, name: %s, data: %s", cl.Cid, hashed)
	}
	return nil
}
