package blockstore

import (
	"fmt"
	"iter"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/storacha/go-cacao/core/ipld"
)

type lrustore struct {
	cache *lru.Cache[string, ipld.Block]
}

// NewLRUBlockStore creates a block store holding at most size blocks. When
// full, the least recently used block is evicted.
func NewLRUBlockStore(size int, options ...Option) (BlockStore, error) {
	cfg := bsConfig{}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	cache, err := lru.New[string, ipld.Block](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}
	bs := &lrustore{cache}
	if err := fill(bs, cfg); err != nil {
		return nil, err
	}
	return bs, nil
}

func (bs *lrustore) Put(block ipld.Block) error {
	bs.cache.Add(block.Link().String(), block)
	return nil
}

func (bs *lrustore) Get(link ipld.Link) (ipld.Block, bool, error) {
	b, ok := bs.cache.Get(link.String())
	return b, ok, nil
}

// Iterator iterates blocks from least to most recently used, without
// updating recency.
func (bs *lrustore) Iterator() iter.Seq2[ipld.Block, error] {
	keys := bs.cache.Keys()
	return func(yield func(ipld.Block, error) bool) {
		for _, k := range keys {
			b, ok := bs.cache.Peek(k)
			if !ok {
				continue
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}
