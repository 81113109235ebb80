// cacao-compare transcodes compact UCAN tokens into CACAO envelopes and
// prints the stored size of each encoding, for both DID representations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/pflag"
	"github.com/storacha/go-cacao/cacao"
	"github.com/storacha/go-cacao/compare"
	"github.com/storacha/go-cacao/core/car"
	"github.com/storacha/go-cacao/core/dag/blockstore"
	"github.com/storacha/go-cacao/core/dag/blockstore/ipfs"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/ipld/block"
	"github.com/storacha/go-cacao/core/ipld/codec/cbor"
	ipldjson "github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/principal/decoder"
	"github.com/storacha/go-cacao/ucan/parser"
)

var log = logging.Logger("cacao/cmd")

type options struct {
	tokens          []string
	example         bool
	signers         []string
	ipfsAPI         string
	cacheSize       int
	carPath         string
	dids            []string
	noMetadata      bool
	keepEmptyProofs bool
	concurrency     int
	diag            bool
	jsonOut         bool
	showCACAO       bool
	logLevel        string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		printFailure(os.Stderr, err)
		os.Exit(1)
	}
}

// printFailure writes err as a DAG-JSON failure, falling back to plain text.
func printFailure(w io.Writer, err error) {
	nd, ierr := failure.FromError(err).ToIPLD()
	if ierr == nil {
		if b, jerr := ipldjson.EncodeNode(nd); jerr == nil {
			fmt.Fprintf(w, "%s\n", b)
			return
		}
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func run(args []string, out io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("cacao-compare", pflag.ContinueOnError)
	flagSet.StringArrayVarP(&opts.tokens, "token", "t", nil, "compact UCAN token to measure (repeatable, positional arguments are tokens too)")
	flagSet.BoolVar(&opts.example, "example", false, "measure the fixed example token")
	flagSet.StringArrayVar(&opts.signers, "signer", nil, "multibase encoded Ed25519 or RSA private key to issue the example capability with (repeatable)")
	flagSet.StringVar(&opts.ipfsAPI, "ipfs-api", "", "Kubo RPC API to store blocks in, e.g. "+ipfs.DefaultAPI+" (default: in-memory store)")
	flagSet.IntVar(&opts.cacheSize, "cache-size", 1024, "maximum number of blocks held by the in-memory store (ignored with --diag or --car)")
	flagSet.StringVar(&opts.carPath, "car", "", "write the measured blocks to this CAR file")
	flagSet.StringSliceVar(&opts.dids, "did", []string{"bytes", "string"}, "DID representations to measure")
	flagSet.BoolVar(&opts.noMetadata, "no-metadata", false, "omit the signature metadata block (s.m) from envelopes")
	flagSet.BoolVar(&opts.keepEmptyProofs, "keep-empty-proofs", false, "keep an empty proof list in envelopes instead of dropping it")
	flagSet.IntVar(&opts.concurrency, "concurrency", 4, "number of tokens measured at once")
	flagSet.BoolVar(&opts.diag, "diag", false, "print the CBOR diagnostic notation of every block")
	flagSet.BoolVar(&opts.jsonOut, "json", false, "print measurements as JSON lines")
	flagSet.BoolVar(&opts.showCACAO, "cacao-json", false, "print each token's CACAO envelope as JSON")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	opts.tokens = append(opts.tokens, flagSet.Args()...)

	if err := logging.SetLogLevelRegex("cacao/.*", opts.logLevel); err != nil {
		return fmt.Errorf("setting log level: %w", err)
	}

	if opts.example {
		token, err := compare.ExampleToken()
		if err != nil {
			return err
		}
		opts.tokens = append(opts.tokens, token)
	}
	for _, key := range opts.signers {
		issuer, err := decoder.ParseSigner(key)
		if err != nil {
			return fmt.Errorf("parsing signer: %w", err)
		}
		token, err := compare.IssueExample(issuer)
		if err != nil {
			return err
		}
		log.Debugw("issued token", "issuer", issuer.DID().String())
		opts.tokens = append(opts.tokens, token)
	}
	if len(opts.tokens) == 0 {
		return fmt.Errorf("no tokens: pass --token, --example, --signer or tokens as arguments")
	}

	var reps []did.Representation
	for _, s := range opts.dids {
		rep, err := did.ParseRepresentation(s)
		if err != nil {
			return err
		}
		reps = append(reps, rep)
	}

	store, err := newStore(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := compare.MeasureAll(ctx, store, opts.tokens,
		compare.WithRepresentations(reps...),
		compare.WithSignatureMetadata(!opts.noMetadata),
		compare.WithProofElision(!opts.keepEmptyProofs),
		compare.WithConcurrency(opts.concurrency),
	)
	if err != nil {
		return err
	}

	for i, ms := range results {
		if opts.showCACAO {
			if err := printEnvelope(out, opts, opts.tokens[i]); err != nil {
				return err
			}
		}
		for _, m := range ms {
			if err := printMeasurement(out, opts, i, m); err != nil {
				return err
			}
			if opts.diag {
				if err := printDiag(ctx, out, store, m); err != nil {
					return err
				}
			}
		}
	}

	if opts.carPath != "" {
		if err := writeCAR(ctx, opts.carPath, store, results); err != nil {
			return err
		}
		log.Infow("wrote CAR", "path", opts.carPath)
	}
	return nil
}

// newStore picks the block store. Blocks are read back after measuring for
// --diag and --car, so those get a store that never evicts.
func newStore(opts options) (compare.BlockStore, error) {
	if opts.ipfsAPI != "" {
		return ipfs.New(opts.ipfsAPI)
	}
	var bs blockstore.BlockStore
	var err error
	if opts.diag || opts.carPath != "" {
		bs, err = blockstore.NewBlockStore()
	} else {
		bs, err = blockstore.NewLRUBlockStore(opts.cacheSize)
	}
	if err != nil {
		return nil, err
	}
	return compare.NewLocalStore(bs), nil
}

func printMeasurement(out io.Writer, opts options, i int, m compare.Measurement) error {
	if opts.jsonOut {
		b, err := json.Marshal(struct {
			Token int `json:"token"`
			compare.Measurement
		}{i, m})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", b)
		return err
	}
	_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%d\t%s\n", i, m.Format, m.DIDRepresentation, m.ByteLength, m.Link)
	return err
}

func printEnvelope(out io.Writer, opts options, token string) error {
	tok, err := parser.Parse(token)
	if err != nil {
		return err
	}
	env, err := cacao.Remap(tok,
		cacao.WithSignatureMetadata(!opts.noMetadata),
		cacao.WithProofElision(!opts.keepEmptyProofs),
	)
	if err != nil {
		return err
	}
	b, err := cacao.JSON(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", b)
	return err
}

func printDiag(ctx context.Context, out io.Writer, store compare.BlockStore, m compare.Measurement) error {
	b, err := store.Get(ctx, m.Link)
	if err != nil {
		return err
	}
	d, err := cbor.Diagnose(b)
	if err != nil {
		return fmt.Errorf("diagnosing %s: %w", m.Link, err)
	}
	_, err = fmt.Fprintf(out, "  %s\n", d)
	return err
}

func writeCAR(ctx context.Context, path string, store compare.BlockStore, results [][]compare.Measurement) error {
	bs, err := blockstore.NewBlockStore()
	if err != nil {
		return err
	}
	var roots []ipld.Link
	for _, ms := range results {
		for _, m := range ms {
			b, err := store.Get(ctx, m.Link)
			if err != nil {
				return err
			}
			blk := block.NewBlock(m.Link, b)
			if err := block.Verify(blk); err != nil {
				return err
			}
			if err := bs.Put(blk); err != nil {
				return err
			}
			roots = append(roots, m.Link)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CAR file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, car.Encode(roots, bs.Iterator())); err != nil {
		return fmt.Errorf("writing CAR file: %w", err)
	}
	return f.Close()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `cacao-compare: compare the encoded size of UCAN tokens and their CACAO envelopes.

Every token is parsed, remapped into a CACAO envelope and both the native
UCAN and the envelope are encoded as DAG-CBOR with DIDs as bytes and as
strings. Blocks are stored and read back, and the stored length is printed.

Usage:
  cacao-compare [flags] [token...]

Examples:
  # Measure the fixed example token in memory
  cacao-compare --example

  # Measure through a local IPFS node, without signature metadata
  cacao-compare --example --ipfs-api http://localhost:5001 --no-metadata

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
