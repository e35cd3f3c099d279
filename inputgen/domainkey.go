package inputgen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrInvalidVersion means a DKIM TXT record carries a v= tag other
	// than "DKIM1".
	ErrInvalidVersion = errors.New("inputgen: invalid dkim record version")
	// ErrUnsupportedKeyType means a DKIM TXT record's k= tag names a
	// key type the verification core does not accept (only rsa).
	ErrUnsupportedKeyType = errors.New("inputgen: unsupported dkim key type")
	// ErrKeyRevoked means the record is well-formed but its p= tag is
	// empty, which RFC 6376 §3.6.1 defines as key revocation.
	ErrKeyRevoked = errors.New("inputgen: dkim key revoked")
	// ErrServiceTypeMismatch means the record's s= tag excludes email.
	ErrServiceTypeMismatch = errors.New("inputgen: dkim record does not grant service type email")
)

// domainKeyRecord holds the tags of one "selector._domainkey.domain"
// TXT record relevant to RSA-only DKIM verification.
type domainKeyRecord struct {
	Version     string
	KeyType     string
	PublicKeyB64 string
	ServiceType []string
}

// parseDomainKeyRecord parses one DNS TXT record string. Unlike a
// full DKIM key-record parser it accepts only k=rsa (or an absent k=,
// which defaults to rsa), since that is the only key type the
// verification core can check.
func parseDomainKeyRecord(raw string) (domainKeyRecord, error) {
	rec := domainKeyRecord{KeyType: "rsa"}
	for _, pair := range strings.Split(raw, ";") {
		k, v, _ := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		switch strings.ToLower(k) {
		case "v":
			rec.Version = v
		case "k":
			rec.KeyType = strings.ToLower(v)
		case "p":
			rec.PublicKeyB64 = strings.ReplaceAll(v, " ", "")
		case "s":
			for _, s := range strings.Split(v, ":") {
				rec.ServiceType = append(rec.ServiceType, strings.TrimSpace(s))
			}
		}
	}
	if rec.Version != "" && rec.Version != "DKIM1" {
		return domainKeyRecord{}, ErrInvalidVersion
	}
	if rec.KeyType != "rsa" {
		return domainKeyRecord{}, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, rec.KeyType)
	}
	if !rec.allowsService("email") {
		return domainKeyRecord{}, ErrServiceTypeMismatch
	}
	return rec, nil
}

func (r domainKeyRecord) allowsService(service string) bool {
	if len(r.ServiceType) == 0 {
		return true
	}
	for _, s := range r.ServiceType {
		if s == "*" || s == service {
			return true
		}
	}
	return false
}

// LookupRSAKey fetches and parses the DKIM TXT record at
// "selector._domainkey.domain", returning the raw DER-or-PKIX key
// bytes decoded from its p= tag. domain is normalized to its ASCII
// IDNA A-label form before the query is built, matching the
// normalization the core's own from_domain comparison requires.
func LookupRSAKey(ctx context.Context, resolver TXTResolver, logger *zap.SugaredLogger, selector, domain string) ([]byte, error) {
	asciiDomain, err := idna.ToASCII(domain)
	if err != nil {
		return nil, fmt.Errorf("inputgen: normalizing domain %q: %w", domain, err)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(asciiDomain); err != nil {
		return nil, fmt.Errorf("inputgen: %q is not a registrable domain: %w", domain, err)
	}
	query := fmt.Sprintf("%s._domainkey.%s", selector, asciiDomain)

	records, err := lookupTXT(ctx, resolver, logger, query)
	if err != nil {
		return nil, err
	}

	for _, raw := range records {
		rec, err := parseDomainKeyRecord(raw)
		if err != nil {
			logger.Warnw("skipping unusable dkim record", "query", query, "error", err)
			continue
		}
		if rec.PublicKeyB64 == "" {
			return nil, ErrKeyRevoked
		}
		keyBytes, err := base64.StdEncoding.DecodeString(rec.PublicKeyB64)
		if err != nil {
			return nil, fmt.Errorf("inputgen: decoding p= value: %w", err)
		}
		return keyBytes, nil
	}
	return nil, ErrNoRecordFound
}
