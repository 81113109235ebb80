// Package ipfs stores blocks in an IPFS node through the Kubo RPC API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/multiformats/go-multicodec"
	"github.com/storacha/go-cacao/core/ipld"
	thttp "github.com/storacha/go-cacao/transport/http"
)

var log = logging.Logger("cacao/ipfs")

// DefaultAPI is the default address of the Kubo RPC API.
const DefaultAPI = "http://localhost:5001"

const (
	putPath = "/api/v0/block/put"
	getPath = "/api/v0/block/get"
)

// Option is an option configuring the store.
type Option func(cfg *storeConfig) error

type storeConfig struct {
	client *http.Client
	codec  multicodec.Code
	hash   multicodec.Code
}

// WithHTTPClient configures the HTTP client used to call the API.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *storeConfig) error {
		cfg.client = c
		return nil
	}
}

// WithCodec configures the codec the node tags stored blocks with. The
// default is dag-cbor.
func WithCodec(code multicodec.Code) Option {
	return func(cfg *storeConfig) error {
		cfg.codec = code
		return nil
	}
}

// Store is a content addressed block store backed by an IPFS node.
type Store struct {
	api   *url.URL
	cfg   storeConfig
	chopt []thttp.Option
}

// New creates a store for the Kubo RPC API at the given base URL.
func New(api string, options ...Option) (*Store, error) {
	u, err := url.Parse(api)
	if err != nil {
		return nil, fmt.Errorf("parsing API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL: %q", api)
	}
	cfg := storeConfig{codec: multicodec.DagCbor, hash: multicodec.Sha2_256}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	var chopt []thttp.Option
	if cfg.client != nil {
		chopt = append(chopt, thttp.WithClient(cfg.client))
	}
	return &Store{api: u, cfg: cfg, chopt: chopt}, nil
}

func (s *Store) endpoint(path string, query url.Values) *url.URL {
	u := *s.api
	u.Path = path
	u.RawQuery = query.Encode()
	return &u
}

type putResponse struct {
	Key  string
	Size int
}

// Put stores the bytes as a block and returns its link.
func (s *Store) Put(ctx context.Context, b []byte) (ipld.Link, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "block")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(b); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	query := url.Values{}
	query.Set("cid-codec", s.cfg.codec.String())
	query.Set("mhtype", s.cfg.hash.String())
	hdrs := http.Header{}
	hdrs.Set("Content-Type", mw.FormDataContentType())

	channel := thttp.NewChannel(s.endpoint(putPath, query), s.chopt...)
	res, err := channel.Request(ctx, thttp.NewRequest(&body, hdrs))
	if err != nil {
		return nil, fmt.Errorf("putting block: %w", err)
	}
	defer res.Body().Close()

	var out putResponse
	if err := json.NewDecoder(res.Body()).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding block/put response: %w", err)
	}
	c, err := cid.Parse(out.Key)
	if err != nil {
		return nil, fmt.Errorf("parsing block CID: %w", err)
	}
	if out.Size != len(b) {
		log.Warnw("stored block size differs from input", "cid", c, "input", len(b), "stored", out.Size)
	}
	log.Debugw("put block", "cid", c, "size", out.Size)
	return cidlink.Link{Cid: c}, nil
}

// Get fetches the bytes of a block.
func (s *Store) Get(ctx context.Context, link ipld.Link) ([]byte, error) {
	query := url.Values{}
	query.Set("arg", link.String())

	channel := thttp.NewChannel(s.endpoint(getPath, query), s.chopt...)
	res, err := channel.Request(ctx, thttp.NewRequest(http.NoBody, nil))
	if err != nil {
		return nil, fmt.Errorf("getting block %s: %w", link, err)
	}
	defer res.Body().Close()

	b, err := io.ReadAll(res.Body())
	if err != nil {
		return nil, fmt.Errorf("reading block %s: %w", link, err)
	}
	log.Debugw("got block", "cid", link, "size", len(b))
	return b, nil
}
