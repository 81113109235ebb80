// Package compare runs compact UCAN tokens through the transcoding pipeline
// and measures the size of the native UCAN and CACAO encodings.
package compare

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-cacao/cacao"
	"github.com/storacha/go-cacao/canonical"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/ucan/parser"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("cacao/compare")

// Format names an encoding being measured.
type Format string

const (
	UCAN  Format = "ucan"
	CACAO Format = "cacao"
)

// Measurement is the stored size of one encoding of a token.
type Measurement struct {
	Format            Format             `json:"format"`
	DIDRepresentation did.Representation `json:"didRepresentation"`
	ByteLength        int                `json:"byteLength"`
	Link              ipld.Link          `json:"cid,omitempty"`
}

// BlockStore is a content addressed store. The length of the bytes returned
// by Get is what gets reported, since a store may frame what it is given.
type BlockStore interface {
	Put(ctx context.Context, b []byte) (ipld.Link, error)
	Get(ctx context.Context, link ipld.Link) ([]byte, error)
}

// Option is an option configuring a comparison run.
type Option func(cfg *compareConfig) error

type compareConfig struct {
	reps        []did.Representation
	metadata    bool
	elide       bool
	concurrency int
}

// WithRepresentations configures the DID representations to measure. Both
// are measured by default.
func WithRepresentations(reps ...did.Representation) Option {
	return func(cfg *compareConfig) error {
		if len(reps) == 0 {
			return fmt.Errorf("no DID representations")
		}
		cfg.reps = reps
		return nil
	}
}

// WithSignatureMetadata configures whether envelopes carry signature
// metadata. Included by default.
func WithSignatureMetadata(include bool) Option {
	return func(cfg *compareConfig) error {
		cfg.metadata = include
		return nil
	}
}

// WithProofElision configures whether empty proof lists are dropped from
// envelopes. Enabled by default.
func WithProofElision(elide bool) Option {
	return func(cfg *compareConfig) error {
		cfg.elide = elide
		return nil
	}
}

// WithConcurrency configures how many tokens [MeasureAll] processes at once.
func WithConcurrency(n int) Option {
	return func(cfg *compareConfig) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		cfg.concurrency = n
		return nil
	}
}

func newConfig(options []Option) (compareConfig, error) {
	cfg := compareConfig{
		reps:        did.Representations,
		metadata:    true,
		elide:       true,
		concurrency: 4,
	}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return compareConfig{}, err
		}
	}
	return cfg, nil
}

// Measure transcodes a token and stores each encoding: the native UCAN and
// the CACAO envelope, for every configured DID representation. It fails as a
// whole if any step fails.
func Measure(ctx context.Context, store BlockStore, token string, options ...Option) ([]Measurement, error) {
	cfg, err := newConfig(options)
	if err != nil {
		return nil, err
	}
	return measure(ctx, store, token, cfg)
}

func measure(ctx context.Context, store BlockStore, token string, cfg compareConfig) ([]Measurement, error) {
	tok, err := parser.Parse(token)
	if err != nil {
		return nil, err
	}
	model, err := tok.UCAN()
	if err != nil {
		return nil, err
	}

	var ms []Measurement
	for _, rep := range cfg.reps {
		ub, err := canonical.EncodeUCAN(model, rep)
		if err != nil {
			return nil, err
		}
		env, err := cacao.Remap(tok,
			cacao.WithDIDRepresentation(rep),
			cacao.WithSignatureMetadata(cfg.metadata),
			cacao.WithProofElision(cfg.elide),
		)
		if err != nil {
			return nil, err
		}
		cb, err := canonical.EncodeCACAO(env, rep)
		if err != nil {
			return nil, err
		}

		for _, enc := range []struct {
			format Format
			bytes  []byte
		}{{UCAN, ub}, {CACAO, cb}} {
			m, err := roundTrip(ctx, store, enc.format, rep, enc.bytes)
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func roundTrip(ctx context.Context, store BlockStore, format Format, rep did.Representation, b []byte) (Measurement, error) {
	link, err := store.Put(ctx, b)
	if err != nil {
		return Measurement{}, fmt.Errorf("storing %s (%s DIDs): %w", format, rep, err)
	}
	stored, err := store.Get(ctx, link)
	if err != nil {
		return Measurement{}, fmt.Errorf("fetching %s (%s DIDs): %w", format, rep, err)
	}
	log.Debugw("measured", "format", format, "did", rep, "cid", link, "encoded", len(b), "stored", len(stored))
	return Measurement{
		Format:            format,
		DIDRepresentation: rep,
		ByteLength:        len(stored),
		Link:              link,
	}, nil
}

// MeasureAll measures independent tokens in parallel. Results are in the
// order of the tokens. The first failure cancels the remaining work.
func MeasureAll(ctx context.Context, store BlockStore, tokens []string, options ...Option) ([][]Measurement, error) {
	cfg, err := newConfig(options)
	if err != nil {
		return nil, err
	}
	results := make([][]Measurement, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, token := range tokens {
		g.Go(func() error {
			ms, err := measure(gctx, store, token, cfg)
			if err != nil {
				return fmt.Errorf("token %d: %w", i, err)
			}
			results[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Infow("measured tokens", "count", len(tokens))
	return results, nil
}
