// Package verifier composes the DKIM verifier and the regex evaluator
// into the two public entry points of the verification core:
// verify_email and verify_email_with_regex.
package verifier

import (
	"crypto/sha256"

	"github.com/zkemail/zkemail-go/dkim"
	"github.com/zkemail/zkemail-go/model"
	"github.com/zkemail/zkemail-go/pubkey"
	"github.com/zkemail/zkemail-go/regexeval"
)

// verifyDKIM runs the DKIM pipeline and builds the commitment hashes
// that both entry points return, additionally surfacing the raw DKIM
// result so VerifyEmailWithRegex can scan the verified header/body
// bytes without re-running the pipeline.
func verifyDKIM(email model.Email) (model.EmailVerifierOutput, dkim.Result, error) {
	fromDomainHash := sha256.Sum256([]byte(email.FromDomain))
	publicKeyHash := sha256.Sum256(email.PublicKey.KeyBytes)

	pub, err := pubkey.Parse(email.PublicKey.KeyBytes, email.PublicKey.KeyType)
	if err != nil {
		return model.EmailVerifierOutput{}, dkim.Result{}, err
	}

	result, err := dkim.Verify(email.RawEmail, email.FromDomain, pub)
	if err != nil {
		return model.EmailVerifierOutput{}, dkim.Result{}, err
	}

	out := model.EmailVerifierOutput{
		FromDomainHash: fromDomainHash,
		PublicKeyHash:  publicKeyHash,
		Verified:       result.Verified,
		ExternalInputs: email.ExternalInputs,
	}
	return out, result, nil
}

// VerifyEmail runs DKIM verification and commits the from_domain and
// public_key hashes. A structural error is returned only when the
// input itself cannot be interpreted; a failed DKIM check is reported
// as Verified=false with a nil error.
func VerifyEmail(email model.Email) (model.EmailVerifierOutput, error) {
	out, _, err := verifyDKIM(email)
	return out, err
}

// VerifyEmailWithRegex runs VerifyEmail, then — only on a successful
// DKIM verification — evaluates the configured regex parts against
// the DKIM-verified header and body bytes. Matches are never scanned
// over data DKIM did not cover.
func VerifyEmailWithRegex(input model.EmailWithRegex) (model.EmailWithRegexVerifierOutput, error) {
	out, result, err := verifyDKIM(input.Email)
	if err != nil {
		return model.EmailWithRegexVerifierOutput{}, err
	}
	if !out.Verified {
		return model.EmailWithRegexVerifierOutput{Email: out}, nil
	}

	headerMatches, err := regexeval.EvaluateParts(result.SignedHeaders, input.RegexInput.HeaderParts)
	if err != nil {
		return model.EmailWithRegexVerifierOutput{}, err
	}
	bodyMatches, err := regexeval.EvaluateParts(result.SignedBody, input.RegexInput.BodyParts)
	if err != nil {
		return model.EmailWithRegexVerifierOutput{}, err
	}

	return model.EmailWithRegexVerifierOutput{
		Email:         out,
		HeaderMatches: headerMatches,
		BodyMatches:   bodyMatches,
	}, nil
}
