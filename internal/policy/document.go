// Package policy models the AWS resource-based policy document shape:
// parse, normalize, and append grant statements while leaving existing
// statements untouched.
package policy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultVersion is the policy language version stamped on documents we
// create from scratch. Documents parsed from the provider keep whatever
// version they carried.
const DefaultVersion = "2012-10-17"

// Document is an access-control policy document. A zero Document is not
// valid; use Empty or Parse.
type Document struct {
	Version   string      `json:"Version"`
	ID        string      `json:"Id,omitempty"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single allow/deny statement. Fields the provider allows
// as either a string or a list round-trip through Value without changing
// shape.
type Statement struct {
	Sid          string          `json:"Sid,omitempty"`
	Effect       string          `json:"Effect"`
	Principal    *Principal      `json:"Principal,omitempty"`
	NotPrincipal *Principal      `json:"NotPrincipal,omitempty"`
	Action       Value           `json:"Action,omitzero"`
	NotAction    Value           `json:"NotAction,omitzero"`
	Resource     Value           `json:"Resource,omitzero"`
	NotResource  Value           `json:"NotResource,omitzero"`
	Condition    json.RawMessage `json:"Condition,omitempty"`
}

// Empty returns a structurally valid document with no statements. Used as
// the baseline whenever a resource has no readable policy, so callers never
// handle a nil document.
func Empty() Document {
	return Document{
		Version:   DefaultVersion,
		Statement: []Statement{},
	}
}

// Parse decodes a policy document from its JSON wire form. The provider
// serializes a lone statement as a bare object rather than a one-element
// list; both shapes are accepted.
func Parse(raw string) (Document, error) {
	var aux struct {
		Version   string          `json:"Version"`
		ID        string          `json:"Id"`
		Statement json.RawMessage `json:"Statement"`
	}
	if err := json.Unmarshal([]byte(raw), &aux); err != nil {
		return Document{}, fmt.Errorf("parsing policy document: %w", err)
	}

	doc := Document{
		Version:   aux.Version,
		ID:        aux.ID,
		Statement: []Statement{},
	}
	if doc.Version == "" {
		doc.Version = DefaultVersion
	}
	if len(aux.Statement) == 0 {
		return doc, nil
	}

	trimmed := strings.TrimSpace(string(aux.Statement))
	if strings.HasPrefix(trimmed, "{") {
		var single Statement
		if err := json.Unmarshal(aux.Statement, &single); err != nil {
			return Document{}, fmt.Errorf("parsing policy statement: %w", err)
		}
		doc.Statement = append(doc.Statement, single)
		return doc, nil
	}
	if err := json.Unmarshal(aux.Statement, &doc.Statement); err != nil {
		return Document{}, fmt.Errorf("parsing policy statements: %w", err)
	}
	if doc.Statement == nil {
		doc.Statement = []Statement{}
	}
	return doc, nil
}

// Marshal serializes the document to its canonical wire form for
// submission back to the provider.
func (d Document) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("serializing policy document: %w", err)
	}
	return string(b), nil
}

// WithStatement returns a copy of the document with stmt appended. The
// existing statements are preserved in order and content.
func (d Document) WithStatement(stmt Statement) Document {
	out := d
	out.Statement = make([]Statement, 0, len(d.Statement)+1)
	out.Statement = append(out.Statement, d.Statement...)
	out.Statement = append(out.Statement, stmt)
	return out
}
