package ipfs_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/go-cacao/core/dag/blockstore/ipfs"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/testing/helpers"
	"github.com/stretchr/testify/require"
)

// kubo emulates the block/put and block/get RPC endpoints of a Kubo node.
type kubo struct {
	mu     sync.Mutex
	blocks map[string][]byte
	codecs []string
}

func (k *kubo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	switch r.URL.Path {
	case "/api/v0/block/put":
		f, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		k.codecs = append(k.codecs, r.URL.Query().Get("cid-codec"))
		c, _ := cid.Prefix{
			Version:  1,
			Codec:    cid.DagCBOR,
			MhType:   multihash.SHA2_256,
			MhLength: -1,
		}.Sum(b)
		k.blocks[c.String()] = b
		json.NewEncoder(w).Encode(map[string]any{"Key": c.String(), "Size": len(b)})
	case "/api/v0/block/get":
		b, ok := k.blocks[r.URL.Query().Get("arg")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(b)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestStore(t *testing.T) {
	node := &kubo{blocks: map[string][]byte{}}
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	store, err := ipfs.New(server.URL, ipfs.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		data := helpers.RandomBytes(100)
		link, err := store.Put(context.Background(), data)
		require.NoError(t, err)
		require.Contains(t, link.String(), "bafyrei")
		require.Equal(t, "dag-cbor", node.codecs[len(node.codecs)-1])

		got, err := store.Get(context.Background(), link)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("missing block", func(t *testing.T) {
		_, err := store.Get(context.Background(), helpers.RandomCID())
		require.Error(t, err)
		require.Equal(t, "HTTPError", failure.NameOf(err))
	})
}

func TestNew(t *testing.T) {
	_, err := ipfs.New("localhost")
	require.Error(t, err)

	_, err = ipfs.New(ipfs.DefaultAPI)
	require.NoError(t, err)
}
