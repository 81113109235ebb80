package compare

import (
	"context"
	"fmt"

	"github.com/storacha/go-cacao/canonical"
	"github.com/storacha/go-cacao/core/dag/blockstore"
	"github.com/storacha/go-cacao/core/ipld"
)

type localStore struct {
	blocks blockstore.BlockStore
}

// NewLocalStore adapts a block store into a [BlockStore] that addresses
// bytes as dag-cbor blocks.
func NewLocalStore(blocks blockstore.BlockStore) BlockStore {
	return &localStore{blocks}
}

func (s *localStore) Put(ctx context.Context, b []byte) (ipld.Link, error) {
	blk, err := canonical.NewBlock(b)
	if err != nil {
		return nil, err
	}
	if err := s.blocks.Put(blk); err != nil {
		return nil, err
	}
	return blk.Link(), nil
}

func (s *localStore) Get(ctx context.Context, link ipld.Link) ([]byte, error) {
	blk, ok, err := s.blocks.Get(link)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("block not found: %s", link)
	}
	return blk.Bytes(), nil
}
