// Package dkim implements DKIM-Signature parsing and verification:
// header/body canonicalization, body-hash rebinding, and the RSA-
// PKCS#1 v1.5 signature check (RFC 6376).
package dkim

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/zkemail/zkemail-go/internal/bodyhash"
	"github.com/zkemail/zkemail-go/internal/canonical"
	"github.com/zkemail/zkemail-go/internal/dkimheader"
	"github.com/zkemail/zkemail-go/internal/header"
	"github.com/zkemail/zkemail-go/message"
)

var (
	// ErrInvalidSignatureHeader is a structural error: the
	// DKIM-Signature tag-list is syntactically invalid, missing a
	// required tag, or fails one of RFC 6376's header-level bindings.
	ErrInvalidSignatureHeader = errors.New("dkim: invalid DKIM-Signature header")
	// ErrUnsupportedAlgorithm is a structural error: a= names an
	// algorithm other than rsa-sha256.
	ErrUnsupportedAlgorithm = errors.New("dkim: unsupported signature algorithm")
)

// Signature holds the parsed tag-list of one DKIM-Signature header.
type Signature struct {
	Algorithm    string
	SignatureB64 string
	BodyHash     string
	HeaderCanon  canonical.Canonicalization
	BodyCanon    canonical.Canonicalization
	Domain       string
	Headers      string
	Identity     string
	Limit        int64
	Selector     string

	raw string
}

// ParseSignature parses one raw "DKIM-Signature: ..." header line.
func ParseSignature(rawLine string) (*Signature, error) {
	k, v := header.ParseHeaderField(rawLine)
	if !strings.EqualFold(k, "dkim-signature") {
		return nil, fmt.Errorf("%w: not a DKIM-Signature field", ErrInvalidSignatureHeader)
	}

	params, err := dkimheader.ParseSignatureParams(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureHeader, err)
	}

	sig := &Signature{raw: rawLine}
	sig.Algorithm = header.StripWhiteSpace(params["a"])
	if sig.Algorithm != "rsa-sha256" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, sig.Algorithm)
	}
	sig.SignatureB64 = header.StripWhiteSpace(params["b"])
	sig.BodyHash = header.StripWhiteSpace(params["bh"])
	sig.Domain = strings.ToLower(header.StripWhiteSpace(params["d"]))
	sig.Headers = params["h"]
	sig.Identity = params["i"]
	sig.Selector = params["s"]

	headerCanon, bodyCanon, err := header.ParseHeaderCanonicalization(params["c"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureHeader, err)
	}
	sig.HeaderCanon = headerCanon
	sig.BodyCanon = bodyCanon

	if l, ok := params["l"]; ok {
		limit, err := strconv.ParseInt(l, 10, 64)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("%w: invalid l= value %q", ErrInvalidSignatureHeader, l)
		}
		sig.Limit = limit
	}

	if err := requireFromInHeaders(sig.Headers); err != nil {
		return nil, err
	}
	if err := checkIdentityDomainBinding(sig.Identity, sig.Domain); err != nil {
		return nil, err
	}
	if err := checkExpirationOrdering(params); err != nil {
		return nil, err
	}

	return sig, nil
}

// requireFromInHeaders enforces RFC 6376 §5.4.1: h= must list From.
func requireFromInHeaders(h string) error {
	for _, name := range strings.Split(h, ":") {
		if strings.EqualFold(strings.TrimSpace(name), "from") {
			return nil
		}
	}
	return fmt.Errorf("%w: h= tag must include From", ErrInvalidSignatureHeader)
}

// checkIdentityDomainBinding enforces RFC 6376 §3.5: when present, i='s
// domain must equal or be a subdomain of d=.
func checkIdentityDomainBinding(identity, domain string) error {
	if identity == "" {
		return nil
	}
	atIndex := strings.LastIndex(identity, "@")
	if atIndex == -1 {
		return nil
	}
	identityDomain := strings.ToLower(identity[atIndex+1:])
	if identityDomain != domain && !strings.HasSuffix(identityDomain, "."+domain) {
		return fmt.Errorf("%w: i= domain must be the same as or a subdomain of d=", ErrInvalidSignatureHeader)
	}
	return nil
}

// checkExpirationOrdering enforces only the structural half of RFC
// 6376's t=/x= requirement (x= must exceed t=); it never compares
// against wall-clock time, since the verification core must be pure.
func checkExpirationOrdering(params map[string]string) error {
	tStr, hasT := params["t"]
	xStr, hasX := params["x"]
	if !hasT || !hasX {
		return nil
	}
	t, err1 := strconv.ParseInt(tStr, 10, 64)
	x, err2 := strconv.ParseInt(xStr, 10, 64)
	if err1 != nil || err2 != nil {
		return fmt.Errorf("%w: invalid t=/x= value", ErrInvalidSignatureHeader)
	}
	if x <= t {
		return fmt.Errorf("%w: x= must be greater than t=", ErrInvalidSignatureHeader)
	}
	return nil
}

// Result is the outcome of Verify. When Verified is false because of
// a verification failure (as opposed to a structural error), the
// remaining fields are zero.
type Result struct {
	Verified      bool
	SignedHeaders []byte
	SignedBody    []byte
	SigningDomain string
}

// Verify implements the DKIM verification pipeline: locate the
// signature, validate its binding to fromDomain, rebind the body hash,
// and check the RSA-PKCS#1 v1.5 signature over the canonicalized
// header block. A non-nil error is always structural (the input could
// not be interpreted); a verification failure that leaves the input
// well-formed is reported as Result{Verified: false} with a nil error.
func Verify(rawEmail []byte, fromDomain string, pub *rsa.PublicKey) (Result, error) {
	headers, body, err := message.Split(rawEmail)
	if err != nil {
		return Result{}, err
	}

	rawSig := findSignatureHeader(headers)
	if rawSig == "" {
		return Result{Verified: false}, nil
	}

	sig, err := ParseSignature(rawSig)
	if err != nil {
		return Result{}, err
	}

	if !domainsEqual(sig.Domain, fromDomain) {
		return Result{Verified: false}, nil
	}

	locatedBody := message.LocateBody(headers, body)
	signedBody := canonicalizeBody(locatedBody, sig.BodyCanon, sig.Limit)

	bh := bodyhash.NewBodyHash(sig.BodyCanon, crypto.SHA256, sig.Limit)
	bh.Write(locatedBody)
	bh.Close()
	if bh.Get() != sig.BodyHash {
		return Result{Verified: false}, nil
	}

	signedHeaders, headerHash := canonicalizeSignedHeaders(headers, rawSig, sig)

	signatureBytes, err := base64.StdEncoding.DecodeString(sig.SignatureB64)
	if err != nil {
		return Result{Verified: false}, nil
	}
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, headerHash, signatureBytes); err != nil {
		return Result{Verified: false}, nil
	}

	return Result{
		Verified:      true,
		SignedHeaders: signedHeaders,
		SignedBody:    signedBody,
		SigningDomain: sig.Domain,
	}, nil
}

// domainsEqual compares d= against from_domain case-insensitively
// after normalizing both to ASCII A-label form, so an internationalized
// from_domain matches a signature whose d= (or vice versa) was written
// in a different but equivalent Unicode/ASCII form. A domain that idna
// cannot normalize is compared as given rather than rejected outright;
// that failure belongs to the match result, not to a raised error.
func domainsEqual(signatureDomain, fromDomain string) bool {
	return strings.EqualFold(normalizeDomain(signatureDomain), normalizeDomain(fromDomain))
}

func normalizeDomain(domain string) string {
	if ascii, err := idna.ToASCII(domain); err == nil {
		return ascii
	}
	return strings.ToLower(domain)
}

func findSignatureHeader(headers []string) string {
	for _, h := range headers {
		k, _ := header.ParseHeaderField(h)
		if strings.EqualFold(k, "dkim-signature") {
			return h
		}
	}
	return ""
}

// canonicalizeBody applies the chosen body canonicalization and the
// l= length limit, returning the exact bytes the signature covers.
func canonicalizeBody(body []byte, canon canonical.Canonicalization, limit int64) []byte {
	var buf bytes.Buffer
	w := canonical.Body(&buf, canon)
	w.Write(body)
	w.Close()
	out := buf.Bytes()
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

// canonicalizeSignedHeaders extracts and canonicalizes the headers
// listed in h=, then appends the canonicalized DKIM-Signature line
// itself (with b= emptied) to compute the signature's hash input. It
// returns the signed-header slice (excluding the DKIM-Signature line,
// per spec) and the SHA-256 digest of the full canonicalized block.
func canonicalizeSignedHeaders(headers []string, rawSig string, sig *Signature) (signedHeaders []byte, digest []byte) {
	names := strings.Split(sig.Headers, ":")
	extracted := header.ExtractHeadersDKIM(headers, names)

	var block strings.Builder
	for _, h := range extracted {
		block.WriteString(canonical.Header(h, sig.HeaderCanon))
	}
	signedHeaders = []byte(block.String())

	strippedSig := dkimheader.StripBValueForSigning(rawSig)
	canonSig := canonical.Header(strippedSig, sig.HeaderCanon)
	canonSig = strings.TrimSuffix(canonSig, "\r\n")

	block.WriteString(canonSig)
	sum := sha256.Sum256([]byte(block.String()))
	return signedHeaders, sum[:]
}
