// Package car reads and writes blocks as CAR (v1) archives.
package car

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/ipld/go-car/util"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/ipld/block"
)

// ContentType is the value the HTTP Content-Type header should have for CARs.
// See https://www.iana.org/assignments/media-types/application/vnd.ipld.car
const ContentType = "application/vnd.ipld.car"

func init() {
	cbor.RegisterCborType(carHeader{})
}

type carHeader struct {
	Roots   []cid.Cid `refmt:"roots"`
	Version uint64    `refmt:"version"`
}

// Encode streams a CAR containing the blocks, with the given roots.
func Encode(roots []ipld.Link, blocks iter.Seq2[ipld.Block, error]) io.Reader {
	reader, writer := io.Pipe()
	go func() {
		h := carHeader{Roots: []cid.Cid{}, Version: 1}
		for _, r := range roots {
			c, err := toCid(r)
			if err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
				return
			}
			h.Roots = append(h.Roots, c)
		}
		hb, err := cbor.DumpObject(h)
		if err != nil {
			writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
			return
		}
		if err := util.LdWrite(writer, hb); err != nil {
			writer.CloseWithError(err)
			return
		}
		for blk, err := range blocks {
			if err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
			c, err := toCid(blk.Link())
			if err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
			if err := util.LdWrite(writer, c.Bytes(), blk.Bytes()); err != nil {
				writer.CloseWithError(err)
				return
			}
		}
		writer.Close()
	}()
	return reader
}

// Decode reads the roots of a CAR and returns an iterator over its blocks.
// Every block is checked against its CID as it is read.
func Decode(reader io.Reader) ([]ipld.Link, iter.Seq2[ipld.Block, error], error) {
	br := bufio.NewReader(reader)

	hb, err := util.LdRead(br)
	if err != nil {
		return nil, nil, err
	}

	var ch carHeader
	if err := cbor.DecodeInto(hb, &ch); err != nil {
		return nil, nil, fmt.Errorf("invalid header: %w", err)
	}

	if ch.Version != 1 {
		return nil, nil, fmt.Errorf("invalid car version: %d", ch.Version)
	}

	roots := make([]ipld.Link, 0, len(ch.Roots))
	for _, r := range ch.Roots {
		roots = append(roots, cidlink.Link{Cid: r})
	}

	return roots, func(yield func(ipld.Block, error) bool) {
		for {
			c, bytes, err := util.ReadNode(br)
			if err != nil {
				if err != io.EOF {
					yield(nil, err)
				}
				return
			}
			blk := block.NewBlock(cidlink.Link{Cid: c}, bytes)
			if err := block.Verify(blk); err != nil {
				yield(nil, err)
				return
			}
			if !yield(blk, nil) {
				return
			}
		}
	}, nil
}

func toCid(link ipld.Link) (cid.Cid, error) {
	cl, ok := link.(cidlink.Link)
	if !ok {
		return cid.Undef, fmt.Errorf("unsupported link type: %T", link)
	}
	return cl.Cid, nil
}
