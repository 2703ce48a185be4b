// taxonomy.go — domain/code/flags taxonomy and default-flag policy.
//
// Numerical values are frozen once shipped (spec.md §4.5): renumbering any
// of these constants is a breaking change for anything that serializes
// them, even though the JSON surface only ever emits symbolic names.
package ledgercore

// Domain classifies an error into a coarse category.
type Domain int

const (
	DomainOK        Domain = 0
	DomainGeneric   Domain = 1
	DomainAllocator Domain = 2
	DomainGit       Domain = 3
	DomainPolicy    Domain = 4
	DomainTrust     Domain = 5
	DomainIO        Domain = 6
	DomainConfig    Domain = 7
)

// domainNames maps each known Domain to its stable JSON symbolic name.
// Order does not matter here (lookup, not emission); see flagOrder for an
// order-sensitive table.
var domainNames = map[Domain]string{
	DomainOK:        "OK",
	DomainGeneric:   "GENERIC",
	DomainAllocator: "ALLOCATOR",
	DomainGit:       "GIT",
	DomainPolicy:    "POLICY",
	DomainTrust:     "TRUST",
	DomainIO:        "IO",
	DomainConfig:    "CONFIG",
}

// DomainName returns the stable symbolic name for d, or "UNKNOWN" for any
// out-of-range value.
func DomainName(d Domain) string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

// Code is the fine-grained kind within the taxonomy.
type Code int

const (
	CodeOK                Code = 0
	CodeUnknown           Code = 1
	CodeOOM               Code = 2
	CodeInvalidArgument   Code = 3
	CodeNotFound          Code = 4
	CodeConflict          Code = 5
	CodePermissionDenied  Code = 6
	CodePolicyViolation   Code = 7
	CodeTrustViolation    Code = 8
	CodeIOError           Code = 9
	CodeDependencyMissing Code = 10
)

var codeNames = map[Code]string{
	CodeOK:                "OK",
	CodeUnknown:           "UNKNOWN",
	CodeOOM:               "OOM",
	CodeInvalidArgument:   "INVALID_ARGUMENT",
	CodeNotFound:          "NOT_FOUND",
	CodeConflict:          "CONFLICT",
	CodePermissionDenied:  "PERMISSION_DENIED",
	CodePolicyViolation:   "POLICY_VIOLATION",
	CodeTrustViolation:    "TRUST_VIOLATION",
	CodeIOError:           "IO_ERROR",
	CodeDependencyMissing: "DEPENDENCY_MISSING",
}

// CodeName returns the stable symbolic name for c, or "UNKNOWN" for any
// out-of-range value.
func CodeName(c Code) string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Flags is an orthogonal bitset of attributes attached to an Error.
type Flags uint32

const (
	FlagRetryable Flags = 1 << 0
	FlagPermanent Flags = 1 << 1
	FlagAuth      Flags = 1 << 2
)

// flagOrder fixes the emission order for FormatFlags and the JSON
// renderer: RETRYABLE, then PERMANENT, then AUTH. This order is part of
// the external contract (spec.md §6) and must never be reordered.
var flagOrder = []struct {
	bit  Flags
	name string
}{
	{FlagRetryable, "RETRYABLE"},
	{FlagPermanent, "PERMANENT"},
	{FlagAuth, "AUTH"},
}

// Has reports whether f contains every bit in mask.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// names returns the set flag names in flagOrder, used by both
// FormatFlags and the JSON renderer so the two surfaces never diverge.
func (f Flags) names() []string {
	out := make([]string, 0, len(flagOrder))
	for _, fo := range flagOrder {
		if f.Has(fo.bit) {
			out = append(out, fo.name)
		}
	}
	return out
}

// FormatFlags joins the set flag names with "|" in flagOrder, writing up
// to capacity-1 bytes plus a NUL into buffer (when provided), and returns
// the number of bytes the joined name string occupies, NUL excluded —
// matching the C sizing-pass contract from spec.md §4.5 and §8 scenario F
// (FormatFlags(PERMANENT|AUTH, buf, 32) returns 14, the length of
// "PERMANENT|AUTH"). This differs from Render's NUL-inclusive convention;
// Go callers that only want the string should prefer Flags.String().
func FormatFlags(f Flags, buffer []byte, capacity int) int {
	s := f.String()
	required := len(s)
	if buffer != nil && capacity > 0 {
		n := capacity - 1
		if n > len(s) {
			n = len(s)
		}
		if n > len(buffer) {
			n = len(buffer)
		}
		copy(buffer[:n], s[:n])
		if n < len(buffer) {
			buffer[n] = 0
		}
	}
	return required
}

// String joins the set flag names with "|" in fixed order ("" for none).
func (f Flags) String() string {
	names := f.names()
	out := ""
	for i, n := range names {
		if i > 0 {
			out += "|"
		}
		out += n
	}
	return out
}

// DefaultFlags implements the first-match-wins policy table from
// spec.md §4.3:
//
//	domain = IO                                          -> RETRYABLE
//	domain in {POLICY, TRUST}                             -> PERMANENT
//	code in {OOM, IO_ERROR}                                -> RETRYABLE
//	code in {POLICY_VIOLATION, TRUST_VIOLATION,
//	         INVALID_ARGUMENT}                             -> PERMANENT
//	otherwise                                              -> (none)
func DefaultFlags(d Domain, c Code) Flags {
	switch {
	case d == DomainIO:
		return FlagRetryable
	case d == DomainPolicy || d == DomainTrust:
		return FlagPermanent
	case c == CodeOOM || c == CodeIOError:
		return FlagRetryable
	case c == CodePolicyViolation || c == CodeTrustViolation || c == CodeInvalidArgument:
		return FlagPermanent
	default:
		return 0
	}
}
