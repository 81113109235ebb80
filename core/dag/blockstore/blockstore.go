package blockstore

import (
	"fmt"
	"iter"
	"sync"

	"github.com/storacha/go-cacao/core/ipld"
)

type BlockReader interface {
	Get(link ipld.Link) (ipld.Block, bool, error)
	Iterator() iter.Seq2[ipld.Block, error]
}

type BlockWriter interface {
	Put(block ipld.Block) error
}

type BlockStore interface {
	BlockReader
	BlockWriter
}

type blockreader struct {
	keys []string
	blks map[string]ipld.Block
}

func (br *blockreader) Get(link ipld.Link) (ipld.Block, bool, error) {
	b, ok := br.blks[link.String()]
	return b, ok, nil
}

func (br *blockreader) Iterator() iter.Seq2[ipld.Block, error] {
	return iterate(br.keys, br.blks)
}

func iterate(keys []string, blks map[string]ipld.Block) iter.Seq2[ipld.Block, error] {
	return func(yield func(ipld.Block, error) bool) {
		for _, k := range keys {
			v, ok := blks[k]
			var err error
			if !ok {
				err = fmt.Errorf("missing block for key: %s", k)
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

type blockstore struct {
	mu sync.RWMutex
	blockreader
}

func (bs *blockstore) Put(block ipld.Block) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	_, ok := bs.blks[block.Link().String()]
	if ok {
		return nil
	}

	bs.blks[block.Link().String()] = block
	bs.keys = append(bs.keys, block.Link().String())

	return nil
}

func (bs *blockstore) Get(link ipld.Link) (ipld.Block, bool, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.blockreader.Get(link)
}

// Iterator iterates over a snapshot of the blocks in insertion order.
func (bs *blockstore) Iterator() iter.Seq2[ipld.Block, error] {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	keys := append([]string{}, bs.keys...)
	blks := make(map[string]ipld.Block, len(bs.blks))
	for k, v := range bs.blks {
		blks[k] = v
	}
	return iterate(keys, blks)
}

// Option is an option configuring a block reader/writer.
type Option func(cfg *bsConfig) error

type bsConfig struct {
	blks     []ipld.Block
	blksiter iter.Seq2[ipld.Block, error]
}

// WithBlocks configures the blocks the blockstore should contain.
func WithBlocks(blks []ipld.Block) Option {
	return func(cfg *bsConfig) error {
		cfg.blks = blks
		return nil
	}
}

// WithBlocksIterator configures the blocks the blockstore should contain.
func WithBlocksIterator(blks iter.Seq2[ipld.Block, error]) Option {
	return func(cfg *bsConfig) error {
		cfg.blksiter = blks
		return nil
	}
}

func fill(bs BlockWriter, cfg bsConfig) error {
	for _, b := range cfg.blks {
		if err := bs.Put(b); err != nil {
			return err
		}
	}
	if cfg.blksiter != nil {
		for b, err := range cfg.blksiter {
			if err != nil {
				return err
			}
			if err := bs.Put(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func NewBlockStore(options ...Option) (BlockStore, error) {
	cfg := bsConfig{}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	bs := &blockstore{
		blockreader: blockreader{
			keys: []string{},
			blks: map[string]ipld.Block{},
		},
	}
	if err := fill(bs, cfg); err != nil {
		return nil, err
	}
	return bs, nil
}

func NewBlockReader(options ...Option) (BlockReader, error) {
	bs, err := NewBlockStore(options...)
	if err != nil {
		return nil, err
	}
	s := bs.(*blockstore)
	return &s.blockreader, nil
}
