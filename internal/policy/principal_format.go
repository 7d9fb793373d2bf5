package policy

import (
	"fmt"
	"regexp"
	"strings"
)

var accountIDPattern = regexp.MustCompile(`^\d{12}$`)

// NormalizePrincipal canonicalizes a principal supplied on the command
// line. A bare 12-digit account id becomes the account root ARN; the
// wildcard and full ARNs pass through unchanged.
func NormalizePrincipal(principal string) string {
	if accountIDPattern.MatchString(principal) {
		return fmt.Sprintf("arn:aws:iam::%s:root", principal)
	}
	return principal
}

// AccountIDOf extracts the account id from a principal ARN. Some resource
// kinds require the grant principal expressed as a bare account id rather
// than an ARN; when the input is not an ARN it is returned as-is.
func AccountIDOf(principal string) string {
	parts := strings.Split(principal, ":")
	if len(parts) >= 5 && parts[0] == "arn" && parts[4] != "" {
		return parts[4]
	}
	return principal
}
