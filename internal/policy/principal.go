package policy

import (
	"encoding/json"
	"fmt"
)

// Principal is a statement principal block. The wire form is either the
// literal "*" or an object keyed by principal type.
type Principal struct {
	Any           bool
	AWS           Value
	Service       Value
	Federated     Value
	CanonicalUser Value
}

// AWSPrincipal returns a principal block naming one or more AWS
// principals (ARNs or bare account ids).
func AWSPrincipal(ids ...string) *Principal {
	return &Principal{AWS: NewValue(ids...)}
}

// AnyPrincipal returns the wildcard principal.
func AnyPrincipal() *Principal {
	return &Principal{Any: true}
}

type principalObject struct {
	AWS           Value `json:"AWS,omitzero"`
	Service       Value `json:"Service,omitzero"`
	Federated     Value `json:"Federated,omitzero"`
	CanonicalUser Value `json:"CanonicalUser,omitzero"`
}

func (p Principal) MarshalJSON() ([]byte, error) {
	if p.Any {
		return json.Marshal("*")
	}
	return json.Marshal(principalObject{
		AWS:           p.AWS,
		Service:       p.Service,
		Federated:     p.Federated,
		CanonicalUser: p.CanonicalUser,
	})
}

func (p *Principal) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s != "*" {
			return fmt.Errorf("unexpected principal string %q", s)
		}
		*p = Principal{Any: true}
		return nil
	}
	var obj principalObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("parsing principal block: %w", err)
	}
	*p = Principal{
		AWS:           obj.AWS,
		Service:       obj.Service,
		Federated:     obj.Federated,
		CanonicalUser: obj.CanonicalUser,
	}
	return nil
}
