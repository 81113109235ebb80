package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/stretchr/testify/require"
)

func TestFieldError(t *testing.T) {
	t.Run("names and fields", func(t *testing.T) {
		err := SchemaError("att[0].with", nil, "missing required field")
		require.Equal(t, SchemaErrorName, err.Name())
		require.Equal(t, "att[0].with", err.Field())
		require.Equal(t, "SchemaError (att[0].with): missing required field", err.Error())
		require.Contains(t, err.Stack(), "TestFieldError")
	})

	t.Run("wrapped", func(t *testing.T) {
		cause := errors.New("illegal base64 data at input byte 3")
		err := fmt.Errorf("parsing token: %w", EncodingError("header", cause, "decoding segment"))
		require.True(t, Is(err, EncodingErrorName))
		require.False(t, Is(err, SchemaErrorName))
		require.Equal(t, EncodingErrorName, NameOf(err))
		require.Equal(t, "header", FieldOf(err))
		require.ErrorIs(t, err, cause)
	})

	t.Run("unnamed", func(t *testing.T) {
		err := errors.New("boom")
		require.Equal(t, "", NameOf(err))
		require.False(t, Is(err, MalformedTokenName))
	})
}

func TestToIPLD(t *testing.T) {
	t.Run("field error", func(t *testing.T) {
		err := UnencodableValue("iss", nil, "undefined DID")
		nd, ierr := FromError(fmt.Errorf("encoding: %w", err)).ToIPLD()
		require.NoError(t, ierr)

		name, ierr := nd.LookupByString("name")
		require.NoError(t, ierr)
		require.Equal(t, UnencodableValueName, mustString(t, name))

		field, ierr := nd.LookupByString("field")
		require.NoError(t, ierr)
		require.Equal(t, "iss", mustString(t, field))

		_, ierr = json.EncodeNode(nd)
		require.NoError(t, ierr)
	})

	t.Run("plain error", func(t *testing.T) {
		f := FromError(errors.New("boom"))
		require.Equal(t, "", f.Name())
		nd, err := f.ToIPLD()
		require.NoError(t, err)
		msg, err := nd.LookupByString("message")
		require.NoError(t, err)
		require.Equal(t, "boom", mustString(t, msg))
	})
}

func mustString(t *testing.T, n interface{ AsString() (string, error) }) string {
	t.Helper()
	s, err := n.AsString()
	require.NoError(t, err)
	return s
}
