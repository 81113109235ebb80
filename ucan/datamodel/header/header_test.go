package header

import (
	"testing"

	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/storacha/go-cacao/did"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	for _, rep := range did.Representations {
		ts, err := loader.TypeSystem(rep)
		require.NoError(t, err, rep.String())
		require.NotNil(t, ts.TypeByName("Header"))
	}
	require.NotPanics(t, func() {
		bindnode.Prototype((*HeaderModel)(nil), Type())
	})
}
