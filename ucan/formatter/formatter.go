package formatter

import (
	"encoding/base64"
	"fmt"

	"github.com/storacha/go-cacao/core/ipld/codec/json"
	"github.com/storacha/go-cacao/ucan/crypto/signature"
	hdm "github.com/storacha/go-cacao/ucan/datamodel/header"
	pdm "github.com/storacha/go-cacao/ucan/datamodel/payload"
)

// Type is the JWT `typ` header value of a UCAN.
const Type = "JWT"

func FormatSignPayload(payload pdm.PayloadModel, version string, algorithm string) (string, error) {
	hdr, err := FormatHeader(version, algorithm)
	if err != nil {
		return "", fmt.Errorf("formatting header: %w", err)
	}
	pld, err := FormatPayload(payload)
	if err != nil {
		return "", fmt.Errorf("formatting payload: %w", err)
	}
	return fmt.Sprintf("%s.%s", hdr, pld), nil
}

func FormatHeader(version string, algorithm string) (string, error) {
	header := hdm.HeaderModel{
		Alg: algorithm,
		Ucv: version,
		Typ: Type,
	}
	bytes, err := json.Encode(&header, hdm.Type())
	if err != nil {
		return "", fmt.Errorf("dag-json encoding header: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func FormatPayload(payload pdm.PayloadModel) (string, error) {
	bytes, err := json.Encode(&payload, pdm.Type(), pdm.Options()...)
	if err != nil {
		return "", fmt.Errorf("dag-json encoding payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func FormatSignature(s signature.Signature) (string, error) {
	return base64.RawURLEncoding.EncodeToString(s.Raw()), nil
}
