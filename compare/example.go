package compare

import (
	"encoding/base64"
	"fmt"

	"github.com/storacha/go-cacao/principal/ed25519/signer"
	"github.com/storacha/go-cacao/ucan"
)

// exampleSecret is the Ed25519 secret key (seed followed by public key) of
// did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi.
const exampleSecret = "U+bzp2GaFQHso587iSFWPSeCzbSfn/CbNHEz7ilKRZ1UQMmMS7qq4UhTzKn3X9Nj/4xgrwa+UqhMOeo4Ki8JUw=="

// ExampleExpiration is the expiration of the example token.
const ExampleExpiration = 1652449729

// ExampleToken issues the baseline token: a fixed Ed25519 principal
// delegating `store/put` on itself to itself, with no proofs, facts, nonce
// or not-before. The token is deterministic.
func ExampleToken() (string, error) {
	secret, err := base64.StdEncoding.DecodeString(exampleSecret)
	if err != nil {
		return "", fmt.Errorf("decoding example secret: %w", err)
	}
	alice, err := signer.FromRaw(secret)
	if err != nil {
		return "", fmt.Errorf("creating example principal: %w", err)
	}
	return IssueExample(alice)
}

// IssueExample issues the example capability for another principal: the
// issuer delegates `store/put` on itself to itself with the example
// expiration.
func IssueExample(issuer ucan.Signer) (string, error) {
	u, err := ucan.Issue(issuer, issuer, []ucan.Capability[ucan.CaveatBuilder]{
		ucan.NewCapability[ucan.CaveatBuilder]("store/put", issuer.DID().String(), ucan.NoCaveats{}),
	}, ucan.WithExpiration(ExampleExpiration))
	if err != nil {
		return "", fmt.Errorf("issuing example token: %w", err)
	}
	return ucan.Format(u)
}
