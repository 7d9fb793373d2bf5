package exposure

import "github.com/hotpatch-sec/creel/internal/policy"

// ListedResource describes one resource discovered during enumeration.
type ListedResource struct {
	Service      string
	AccountID    string
	ARN          string
	Region       string
	ResourceType string
	Name         string
}

// PolicyReadState distinguishes how a policy read concluded. Callers that
// only care whether a usable policy came back can use Success; the
// tri-state is kept for diagnostics.
type PolicyReadState int

const (
	// PolicyPresent means the provider returned an attached policy.
	PolicyPresent PolicyReadState = iota
	// PolicyAbsent means the resource exists but has no policy attached.
	PolicyAbsent
	// PolicyReadFailed means the resource vanished or the read errored.
	PolicyReadFailed
)

// PolicyReadResult is the outcome of reading a resource's policy. Policy
// is always a structurally valid document; on absence or failure it is the
// empty baseline.
type PolicyReadResult struct {
	Policy policy.Document
	State  PolicyReadState
}

// Success reports whether an attached policy was actually read. False
// means the empty baseline stands in for it.
func (r PolicyReadResult) Success() bool {
	return r.State == PolicyPresent
}

// MessageSuccess is the message carried by a successful mutation result.
const MessageSuccess = "success"

// MutationResult is the audit record of one attempted policy write. It is
// returned for failures as well as successes so a caller can always render
// the before/after pair.
type MutationResult struct {
	Message        string
	Operation      string
	Success        bool
	EvilPrincipal  string
	VictimARN      string
	OriginalPolicy policy.Document
	UpdatedPolicy  policy.Document
	ResourceType   string
	ResourceName   string
	Service        string
}
