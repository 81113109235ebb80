package parser_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/testing/fixtures"
	"github.com/storacha/go-cacao/testing/helpers"
	"github.com/storacha/go-cacao/ucan"
	"github.com/storacha/go-cacao/ucan/parser"
	"github.com/stretchr/testify/require"
)

func issue(t *testing.T, options ...ucan.Option) (ucan.View, string) {
	t.Helper()
	options = append([]ucan.Option{ucan.WithExpiration(fixtures.Expiration)}, options...)
	u, err := ucan.Issue(fixtures.Alice, fixtures.Alice, []ucan.Capability[ucan.CaveatBuilder]{
		ucan.NewCapability[ucan.CaveatBuilder]("store/put", fixtures.Alice.DID().String(), ucan.NoCaveats{}),
	}, options...)
	require.NoError(t, err)
	jwt, err := ucan.Format(u)
	require.NoError(t, err)
	return u, jwt
}

func segment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func pad(s string) string {
	for len(s)%4 != 0 {
		s += "="
	}
	return s
}

const validHeader = `{"alg":"EdDSA","typ":"JWT","ucv":"0.9.1"}`

func validPayload() string {
	alice := fixtures.Alice.DID().String()
	return `{"iss":"` + alice + `","aud":"` + alice + `","att":[{"with":"` + alice + `","can":"store/put"}],"exp":1652449729,"prf":[]}`
}

func TestParse(t *testing.T) {
	t.Run("issued token", func(t *testing.T) {
		u, jwt := issue(t)

		tok, err := parser.Parse(jwt)
		require.NoError(t, err)
		require.Equal(t, "EdDSA", tok.Header.Alg)
		require.Equal(t, "0.9.1", tok.Header.Ucv)
		require.Equal(t, "JWT", tok.Header.Typ)
		require.Empty(t, tok.Header.Extra)
		require.Equal(t, fixtures.Alice.DID(), tok.Issuer)
		require.Equal(t, fixtures.Alice.DID(), tok.Audience)
		require.Equal(t, u.Signature().Raw(), tok.Signature)
		require.Equal(t, jwt, tok.Format())
	})

	t.Run("padded and unpadded are equivalent", func(t *testing.T) {
		_, jwt := issue(t)
		segs := strings.Split(jwt, ".")
		padded := pad(segs[0]) + "." + pad(segs[1]) + "." + pad(segs[2])
		require.NotEqual(t, jwt, padded)

		a, err := parser.Parse(jwt)
		require.NoError(t, err)
		b, err := parser.Parse(padded)
		require.NoError(t, err)

		require.Equal(t, a.Header, b.Header)
		require.Equal(t, a.Issuer, b.Issuer)
		require.Equal(t, a.Audience, b.Audience)
		require.Equal(t, a.Signature, b.Signature)
		require.Equal(t, jwt, b.Format())
	})

	t.Run("wrong segment count", func(t *testing.T) {
		for _, tok := range []string{"", "a.b", "a.b.c.d"} {
			_, err := parser.Parse(tok)
			require.Error(t, err)
			require.True(t, failure.Is(err, failure.MalformedTokenName), tok)
		}
	})

	t.Run("invalid base64url", func(t *testing.T) {
		_, err := parser.Parse("!!!." + segment(validPayload()) + ".c2ln")
		require.True(t, failure.Is(err, failure.EncodingErrorName))
		require.Equal(t, parser.HeaderSegment, failure.FieldOf(err))

		_, err = parser.Parse(segment(validHeader) + "." + segment(validPayload()) + ".*")
		require.True(t, failure.Is(err, failure.EncodingErrorName))
		require.Equal(t, parser.SignatureSegment, failure.FieldOf(err))
	})

	t.Run("signature is never parsed as text", func(t *testing.T) {
		sig := base64.RawURLEncoding.EncodeToString([]byte{0xff, 0x00, 0xfe})
		tok, err := parser.Parse(segment(validHeader) + "." + segment(validPayload()) + "." + sig)
		require.NoError(t, err)
		require.Equal(t, []byte{0xff, 0x00, 0xfe}, tok.Signature)
	})

	t.Run("not a claim map", func(t *testing.T) {
		_, err := parser.Parse(segment("not json") + "." + segment(validPayload()) + ".c2ln")
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, parser.HeaderSegment, failure.FieldOf(err))

		_, err = parser.Parse(segment(validHeader) + "." + segment(`[1,2]`) + ".c2ln")
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, parser.PayloadSegment, failure.FieldOf(err))
	})

	t.Run("missing header field", func(t *testing.T) {
		_, err := parser.Parse(segment(`{"typ":"JWT","ucv":"0.9.1"}`) + "." + segment(validPayload()) + ".c2ln")
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, "header.alg", failure.FieldOf(err))
	})

	t.Run("invalid issuer", func(t *testing.T) {
		_, err := parser.Parse(segment(validHeader) + "." + segment(`{"iss":"alice","aud":"did:web:example.com"}`) + ".c2ln")
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, "iss", failure.FieldOf(err))
	})

	t.Run("extra header fields in key order", func(t *testing.T) {
		hdr := `{"alg":"EdDSA","typ":"JWT","ucv":"0.9.1","kid":"k1","b":true}`
		tok, err := parser.Parse(segment(hdr) + "." + segment(validPayload()) + ".c2ln")
		require.NoError(t, err)
		require.Len(t, tok.Header.Extra, 2)
		require.Equal(t, "b", tok.Header.Extra[0].Key)
		require.Equal(t, "kid", tok.Header.Extra[1].Key)
	})
}

func TestClaims(t *testing.T) {
	t.Run("missing capabilities", func(t *testing.T) {
		alice := fixtures.Alice.DID().String()
		pld := `{"iss":"` + alice + `","aud":"` + alice + `","exp":1}`
		tok, err := parser.Parse(segment(validHeader) + "." + segment(pld) + ".c2ln")
		require.NoError(t, err)

		_, err = tok.Claims()
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, "att", failure.FieldOf(err))
	})

	t.Run("empty proofs are present", func(t *testing.T) {
		alice := fixtures.Alice.DID().String()
		pld := `{"iss":"` + alice + `","aud":"` + alice + `","att":[],"exp":1,"prf":[]}`
		tok, err := parser.Parse(segment(validHeader) + "." + segment(pld) + ".c2ln")
		require.NoError(t, err)

		claims, err := tok.Claims()
		require.NoError(t, err)
		require.NotNil(t, claims.Prf)
		require.Empty(t, claims.Prf)

		pld = `{"iss":"` + alice + `","aud":"` + alice + `","att":[],"exp":1}`
		tok, err = parser.Parse(segment(validHeader) + "." + segment(pld) + ".c2ln")
		require.NoError(t, err)
		claims, err = tok.Claims()
		require.NoError(t, err)
		require.Nil(t, claims.Prf)
	})

	t.Run("undeclared claims", func(t *testing.T) {
		alice := fixtures.Alice.DID().String()
		pld := `{"iss":"` + alice + `","zeta":1,"aud":"` + alice + `","att":[{"with":"` + alice + `","can":"store/put","size":5}],"exp":1,"foo":"bar"}`
		tok, err := parser.Parse(segment(validHeader) + "." + segment(pld) + ".c2ln")
		require.NoError(t, err)

		claims, err := tok.Claims()
		require.NoError(t, err)
		require.Equal(t, "store/put", claims.Att[0].Can())
		require.Equal(t, alice, claims.Att[0].With())
		require.Contains(t, claims.Att[0].Keys, "size")

		extra, err := tok.Extra()
		require.NoError(t, err)
		require.Len(t, extra, 2)
		require.Equal(t, "foo", extra[0].Key)
		require.Equal(t, "bar", helpers.Must(extra[0].Value.AsString()))
		require.Equal(t, "zeta", extra[1].Key)
	})

	t.Run("capability without can", func(t *testing.T) {
		alice := fixtures.Alice.DID().String()
		pld := `{"iss":"` + alice + `","aud":"` + alice + `","att":[{"with":"` + alice + `"}],"exp":1}`
		tok, err := parser.Parse(segment(validHeader) + "." + segment(pld) + ".c2ln")
		require.NoError(t, err)

		_, err = tok.Claims()
		require.True(t, failure.Is(err, failure.SchemaErrorName))
		require.Equal(t, "att[0].can", failure.FieldOf(err))
	})
}

func TestUCAN(t *testing.T) {
	prf := helpers.RandomCID()
	u, jwt := issue(t, ucan.WithNonce("abc"), ucan.WithNotBefore(7), ucan.WithProofs([]ucan.Link{prf}))

	tok, err := parser.Parse(jwt)
	require.NoError(t, err)

	model, err := tok.UCAN()
	require.NoError(t, err)
	require.Equal(t, u.Model().V, model.V)
	require.Equal(t, u.Model().Iss, model.Iss)
	require.Equal(t, u.Model().Aud, model.Aud)
	require.Equal(t, u.Model().Att, model.Att)
	require.Equal(t, u.Model().Exp, model.Exp)
	require.Equal(t, u.Model().S, model.S)
	require.Equal(t, "abc", *model.Nnc)
	require.Equal(t, uint64(7), *model.Nbf)
	require.Len(t, model.Prf, 1)
	require.Equal(t, prf.String(), model.Prf[0].String())
}
