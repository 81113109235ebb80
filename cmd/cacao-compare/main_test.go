package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storacha/go-cacao/core/car"
	"github.com/storacha/go-cacao/core/ipld"
	ipldjson "github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/storacha/go-cacao/core/result/failure"
	fdm "github.com/storacha/go-cacao/core/result/failure/datamodel"
	"github.com/storacha/go-cacao/principal/ed25519/signer"
	"github.com/storacha/go-cacao/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("example as JSON", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--example", "--json"}, &out))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		for _, l := range lines {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(l), &m))
			require.Equal(t, float64(0), m["token"])
			require.Contains(t, []any{"ucan", "cacao"}, m["format"])
			require.Contains(t, []any{"bytes", "string"}, m["didRepresentation"])
			require.Greater(t, m["byteLength"], float64(0))
		}
	})

	t.Run("single representation with diagnostics", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--example", "--did", "string", "--diag"}, &out))
		require.Contains(t, out.String(), `"ucv@0.9.1"`)
		require.NotContains(t, out.String(), "\tbytes\t")
	})

	t.Run("envelope JSON", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--example", "--cacao-json"}, &out))
		require.Contains(t, out.String(), `"t":"ucv@0.9.1"`)
	})

	t.Run("CAR export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blocks.car")
		var out bytes.Buffer
		require.NoError(t, run([]string{"--example", "--car", path}, &out))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		roots, blocks, err := car.Decode(f)
		require.NoError(t, err)
		require.Len(t, roots, 4)
		n := 0
		for _, err := range blocks {
			require.NoError(t, err)
			n++
		}
		require.Equal(t, 4, n)
	})

	t.Run("CAR export with a small cache", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blocks.car")
		require.NoError(t, run([]string{"--example", "--cache-size", "1", "--car", path}, &bytes.Buffer{}))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		roots, _, err := car.Decode(f)
		require.NoError(t, err)
		require.Len(t, roots, 4)
	})

	t.Run("diagnostics with a small cache", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--example", "--cache-size", "1", "--diag"}, &out))
		require.Equal(t, 2, strings.Count(out.String(), `"ucv@0.9.1"`))
	})

	t.Run("signer", func(t *testing.T) {
		key, err := signer.Format(helpers.Must(signer.Generate()))
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, run([]string{"--signer", key, "--did", "bytes"}, &out))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		require.True(t, strings.HasPrefix(lines[0], "0\tucan\tbytes\t"))
		require.True(t, strings.HasPrefix(lines[1], "0\tcacao\tbytes\t"))
	})

	t.Run("invalid signer", func(t *testing.T) {
		require.Error(t, run([]string{"--signer", "not a key"}, &bytes.Buffer{}))
	})

	t.Run("no tokens", func(t *testing.T) {
		require.Error(t, run(nil, &bytes.Buffer{}))
	})

	t.Run("malformed token", func(t *testing.T) {
		require.Error(t, run([]string{"a.b"}, &bytes.Buffer{}))
	})

	t.Run("unknown representation", func(t *testing.T) {
		require.Error(t, run([]string{"--example", "--did", "hex"}, &bytes.Buffer{}))
	})
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	for _, opts := range []options{
		{cacheSize: 1, diag: true},
		{cacheSize: 1, carPath: "blocks.car"},
	} {
		store, err := newStore(opts)
		require.NoError(t, err)
		var links []ipld.Link
		for _, b := range [][]byte{{0x01}, {0x02}, {0x03}} {
			l, err := store.Put(ctx, b)
			require.NoError(t, err)
			links = append(links, l)
		}
		for _, l := range links {
			_, err := store.Get(ctx, l)
			require.NoError(t, err)
		}
	}
}

func TestPrintFailure(t *testing.T) {
	err := run([]string{"e30.e30"}, &bytes.Buffer{})
	require.True(t, failure.Is(err, failure.MalformedTokenName))

	var out bytes.Buffer
	printFailure(&out, err)

	nd, derr := ipldjson.DecodeNode(bytes.TrimSpace(out.Bytes()))
	require.NoError(t, derr)
	f := fdm.Bind(nd)
	require.NotNil(t, f.Name)
	require.Equal(t, failure.MalformedTokenName, *f.Name)
	require.Contains(t, f.Message, "expected 3 segments")
	require.NotNil(t, f.Stack)
}
