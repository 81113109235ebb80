package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/storacha/go-cacao/did"
	"github.com/storacha/go-cacao/principal"
	"github.com/storacha/go-cacao/principal/multiformat"
	"github.com/storacha/go-cacao/principal/rsa/verifier"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
)

const Code = uint64(multicodec.RsaPriv)
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

const keySize = 2048

func Generate() (principal.Signer, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	return FromRaw(x509.MarshalPKCS1PrivateKey(priv))
}

// FromRaw creates a signer from PKCS#1 encoded private key bytes.
func FromRaw(b []byte) (principal.Signer, error) {
	return Decode(multiformat.TagWith(Code, b))
}

func Parse(str string) (principal.Signer, error) {
	_, bytes, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return Decode(bytes)
}

func Format(signer principal.Signer) (string, error) {
	return multibase.Encode(multibase.Base64pad, signer.Encode())
}

func Decode(b []byte) (principal.Signer, error) {
	utb, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}

	priv, err := x509.ParsePKCS1PrivateKey(utb)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	pubbytes := multiformat.TagWith(verifier.Code, x509.MarshalPKCS1PublicKey(&priv.PublicKey))

	verif, err := verifier.Decode(pubbytes)
	if err != nil {
		return nil, fmt.Errorf("decoding public bytes: %w", err)
	}

	return rsasigner{bytes: b, privKey: priv, verifier: verif}, nil
}

type rsasigner struct {
	bytes    []byte
	privKey  *rsa.PrivateKey
	verifier principal.Verifier
}

func (s rsasigner) Code() uint64 {
	return Code
}

func (s rsasigner) SignatureCode() uint64 {
	return SignatureCode
}

func (s rsasigner) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s rsasigner) Verifier() principal.Verifier {
	return s.verifier
}

func (s rsasigner) DID() did.DID {
	return s.verifier.DID()
}

func (s rsasigner) Encode() []byte {
	return s.bytes
}

func (s rsasigner) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, s.bytes, 0)
	return b
}

func (s rsasigner) Sign(msg []byte) signature.Signature {
	digest := sha256.Sum256(msg)
	sig, _ := rsa.SignPKCS1v15(nil, s.privKey, crypto.SHA256, digest[:])
	return signature.NewSignature(SignatureCode, sig)
}
