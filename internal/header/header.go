package header

import (
	"errors"
	"strings"
	"unicode"

	"github.com/zkemail/zkemail-go/internal/canonical"
)

var (
	ErrInvalidEmailFormat = errors.New("invalid email address format")
)

// ParseHeaderField splits a raw header line into its field name and value.
func ParseHeaderField(s string) (string, string) {
	key, value, _ := strings.Cut(s, ":")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// StripWhiteSpace removes every rune unicode.IsSpace reports as
// whitespace from s: '\t', '\n', '\v', '\f', '\r', ' ', U+0085, U+00A0
// and the other Unicode space separators.
func StripWhiteSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseHeaderCanonicalization parses a DKIM-Signature c= value such as
// "relaxed/simple" into its header and body canonicalization modes.
// An empty string means simple/simple; a single token applies to the
// header and defaults the body to simple (RFC 6376 §3.5).
func ParseHeaderCanonicalization(s string) (header canonical.Canonicalization, body canonical.Canonicalization, err error) {
	if s == "" {
		return canonical.Simple, canonical.Simple, nil
	}
	ret := strings.Split(s, "/")
	if len(ret) != 2 {
		return canonical.Canonicalization(ret[0]), canonical.Simple, nil
	}
	switch canonical.Canonicalization(ret[0]) {
	case canonical.Simple, canonical.Relaxed:
		header = canonical.Canonicalization(ret[0])
	default:
		return "", "", errors.New("invalid canonicalization")
	}
	switch canonical.Canonicalization(ret[1]) {
	case canonical.Simple, canonical.Relaxed:
		body = canonical.Canonicalization(ret[1])
	default:
		return "", "", errors.New("invalid canonicalization")
	}
	return
}

// ExtractHeadersDKIM extracts headers from the message according to RFC 6376
// §5.4.2: the h= tag header list is processed left to right, each entry
// consuming one occurrence of that header name from the bottom-most (last
// in the message) toward the top.
func ExtractHeadersDKIM(headers []string, keys []string) []string {
	var ret []string

	byName := make(map[string][]string)
	for _, header := range headers {
		k, _, ok := strings.Cut(header, ":")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		byName[key] = append(byName[key], header)
	}

	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if headersForKey, exists := byName[key]; exists && len(headersForKey) > 0 {
			lastIndex := len(headersForKey) - 1
			ret = append(ret, headersForKey[lastIndex])
			byName[key] = headersForKey[:lastIndex]
		}
		// A header name with no remaining occurrence contributes nothing,
		// matching RFC 6376's "act as though that tag were not included".
	}

	return ret
}

// ParseAddress extracts the bare email address from a From-style header
// value, preferring the angle-addr form ("Name" <addr>) when present.
func ParseAddress(s string) string {
	var address string
	var quoted bool
	var afeeld bool
	var start, end int

	for i, r := range s {
		switch {
		case r == '"' && !afeeld:
			quoted = !quoted
		case r == '<' && !quoted:
			afeeld = true
			start = i
		case r == '>' && !quoted:
			afeeld = false
			end = i
		}
	}

	if start < end {
		address = s[start+1 : end]
	} else {
		address = s
	}

	return strings.TrimSpace(address)
}

// ParseAddressDomain extracts the domain part of the address in a
// From-style header value.
func ParseAddressDomain(s string) (string, error) {
	addr := ParseAddress(s)
	if addr == "" {
		return "", ErrInvalidEmailFormat
	}

	parts := strings.SplitN(addr, "@", -1)
	if len(parts) < 2 {
		return "", ErrInvalidEmailFormat
	}

	return parts[len(parts)-1], nil
}
