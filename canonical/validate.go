package canonical

import (
	"fmt"

	cdm "github.com/storacha/go-cacao/cacao/datamodel"
	"github.com/storacha/go-cacao/core/result/failure"
	"github.com/storacha/go-cacao/did"
	udm "github.com/storacha/go-cacao/ucan/datamodel/ucan"
)

func checkRepresentation(rep did.Representation) error {
	if rep != did.Bytes && rep != did.String {
		return failure.PolicyMismatch("unknown DID representation: %d", int(rep))
	}
	return nil
}

func validateUCAN(m *udm.UCANModel) error {
	if m == nil {
		return failure.UnencodableValue("", nil, "nil UCAN")
	}
	if m.V == "" {
		return failure.UnencodableValue("v", nil, "empty version")
	}
	if err := validatePrincipals(m.Iss, m.Aud); err != nil {
		return err
	}
	if err := validateCapabilities(m.Att); err != nil {
		return err
	}
	if len(m.S) == 0 {
		return failure.UnencodableValue("s", nil, "empty signature")
	}
	for i, l := range m.Prf {
		if l == nil {
			return failure.UnencodableValue(fmt.Sprintf("prf[%d]", i), nil, "nil link")
		}
	}
	return nil
}

func validateCACAO(m *cdm.CACAOModel) error {
	if m == nil {
		return failure.UnencodableValue("", nil, "nil envelope")
	}
	if m.H.T == "" {
		return failure.UnencodableValue("h.t", nil, "empty header type")
	}
	if err := validatePrincipals(m.P.Iss, m.P.Aud); err != nil {
		return err
	}
	if err := validateCapabilities(m.P.Att); err != nil {
		return err
	}
	if m.S.T == "" {
		return failure.UnencodableValue("s.t", nil, "empty signature type")
	}
	if len(m.S.S) == 0 {
		return failure.UnencodableValue("s.s", nil, "empty signature")
	}
	return nil
}

func validatePrincipals(iss, aud did.DID) error {
	if !iss.Defined() {
		return failure.UnencodableValue("iss", nil, "undefined DID")
	}
	if !aud.Defined() {
		return failure.UnencodableValue("aud", nil, "undefined DID")
	}
	return nil
}

func validateCapabilities(att []udm.CapabilityModel) error {
	if att == nil {
		return failure.UnencodableValue("att", nil, "missing capabilities")
	}
	for i, c := range att {
		if c.With() == "" {
			return failure.UnencodableValue(fmt.Sprintf("att[%d].with", i), nil, "missing resource")
		}
		if c.Can() == "" {
			return failure.UnencodableValue(fmt.Sprintf("att[%d].can", i), nil, "missing ability")
		}
	}
	return nil
}
