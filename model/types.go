// Package model defines the immutable input and output records the
// verification core operates on, and their canonical binary codec.
package model

// PublicKey is a DER-encoded public key and its algorithm tag. Only
// key_type "rsa" is currently defined.
type PublicKey struct {
	KeyBytes []byte
	KeyType  string
}

// ExternalInput is an auxiliary byte sequence bound to a verification
// call by the caller, carried unchanged into the output. Invariant:
// len(Value) <= MaxLength.
type ExternalInput struct {
	Name      string
	MaxLength uint64
	Value     []byte
}

// Email is the common input substructure shared by both verification
// entry points.
type Email struct {
	RawEmail       []byte
	FromDomain     string
	PublicKey      PublicKey
	ExternalInputs []ExternalInput
}

// RegexPartKind discriminates the two RegexPart shapes.
type RegexPartKind byte

const (
	RegexPartLiteral            RegexPartKind = 0
	RegexPartPrefixCaptureSuffix RegexPartKind = 1
)

// RegexPart is a tagged variant describing one compiled regex element.
//
// For Kind == RegexPartLiteral, only PatternFwdDFA/PatternBwdDFA are
// meaningful. For Kind == RegexPartPrefixCaptureSuffix, the Prefix*,
// Capture*, Suffix* fields and MaxLength are meaningful.
type RegexPart struct {
	Kind RegexPartKind

	PatternFwdDFA []byte
	PatternBwdDFA []byte

	PrefixFwdDFA  []byte
	PrefixBwdDFA  []byte
	CaptureFwdDFA []byte
	CaptureBwdDFA []byte
	SuffixFwdDFA  []byte
	SuffixBwdDFA  []byte
	MaxLength     uint64
}

// RegexInput carries the compiled regex parts to evaluate against the
// DKIM-verified header block and body.
type RegexInput struct {
	HeaderParts []RegexPart
	BodyParts   []RegexPart
}

// EmailWithRegex is the input to verify_email_with_regex.
type EmailWithRegex struct {
	Email      Email
	RegexInput RegexInput
}

// RegexMatch is a single match emitted by the regex evaluator.
// Invariants: Start <= End; for Literal parts HasCapture is false;
// otherwise HasCapture is true and len(Capture) <= the part's
// MaxLength.
type RegexMatch struct {
	PartIndex  uint64
	Start      uint64
	End        uint64
	HasCapture bool
	Capture    []byte
}

// EmailVerifierOutput is the output of verify_email.
type EmailVerifierOutput struct {
	FromDomainHash [32]byte
	PublicKeyHash  [32]byte
	Verified       bool
	ExternalInputs []ExternalInput
}

// EmailWithRegexVerifierOutput is the output of verify_email_with_regex.
type EmailWithRegexVerifierOutput struct {
	Email         EmailVerifierOutput
	HeaderMatches []RegexMatch
	BodyMatches   []RegexMatch
}
