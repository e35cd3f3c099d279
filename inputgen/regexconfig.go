package inputgen

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/zkemail/zkemail-go/model"
)

// regexPartJSON is the on-disk shape of one compiled regex part: DFA
// blobs travel as base64 strings since JSON has no byte-string type.
type regexPartJSON struct {
	Kind string `json:"kind"`

	PatternFwdDFA string `json:"pattern_fwd_dfa,omitempty"`
	PatternBwdDFA string `json:"pattern_bwd_dfa,omitempty"`

	PrefixFwdDFA  string `json:"prefix_fwd_dfa,omitempty"`
	PrefixBwdDFA  string `json:"prefix_bwd_dfa,omitempty"`
	CaptureFwdDFA string `json:"capture_fwd_dfa,omitempty"`
	CaptureBwdDFA string `json:"capture_bwd_dfa,omitempty"`
	SuffixFwdDFA  string `json:"suffix_fwd_dfa,omitempty"`
	SuffixBwdDFA  string `json:"suffix_bwd_dfa,omitempty"`
	MaxLength     uint64 `json:"max_length,omitempty"`
}

type regexInputJSON struct {
	HeaderParts []regexPartJSON `json:"header_parts"`
	BodyParts   []regexPartJSON `json:"body_parts"`
}

// ErrUnknownRegexPartKind is returned by DecodeRegexInput when a part's
// "kind" field names neither "literal" nor "prefix_capture_suffix".
type ErrUnknownRegexPartKind struct {
	Kind string
}

func (e *ErrUnknownRegexPartKind) Error() string {
	return fmt.Sprintf("inputgen: unknown regex part kind %q", e.Kind)
}

// DecodeRegexInput parses a JSON regex configuration document into a
// model.RegexInput, base64-decoding each DFA blob field.
func DecodeRegexInput(data []byte) (model.RegexInput, error) {
	var doc regexInputJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.RegexInput{}, fmt.Errorf("inputgen: decoding regex config: %w", err)
	}

	headerParts, err := decodeParts(doc.HeaderParts)
	if err != nil {
		return model.RegexInput{}, err
	}
	bodyParts, err := decodeParts(doc.BodyParts)
	if err != nil {
		return model.RegexInput{}, err
	}
	return model.RegexInput{HeaderParts: headerParts, BodyParts: bodyParts}, nil
}

func decodeParts(parts []regexPartJSON) ([]model.RegexPart, error) {
	out := make([]model.RegexPart, 0, len(parts))
	for i, p := range parts {
		decoded, err := decodePart(p)
		if err != nil {
			return nil, fmt.Errorf("inputgen: part %d: %w", i, err)
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodePart(p regexPartJSON) (model.RegexPart, error) {
	var kind model.RegexPartKind
	switch p.Kind {
	case "literal":
		kind = model.RegexPartLiteral
	case "prefix_capture_suffix":
		kind = model.RegexPartPrefixCaptureSuffix
	default:
		return model.RegexPart{}, &ErrUnknownRegexPartKind{Kind: p.Kind}
	}

	decode := func(name, b64 string, dst *[]byte) error {
		if b64 == "" {
			return nil
		}
		b, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
		return nil
	}

	part := model.RegexPart{Kind: kind, MaxLength: p.MaxLength}
	for _, f := range []struct {
		name string
		b64  string
		dst  *[]byte
	}{
		{"pattern_fwd_dfa", p.PatternFwdDFA, &part.PatternFwdDFA},
		{"pattern_bwd_dfa", p.PatternBwdDFA, &part.PatternBwdDFA},
		{"prefix_fwd_dfa", p.PrefixFwdDFA, &part.PrefixFwdDFA},
		{"prefix_bwd_dfa", p.PrefixBwdDFA, &part.PrefixBwdDFA},
		{"capture_fwd_dfa", p.CaptureFwdDFA, &part.CaptureFwdDFA},
		{"capture_bwd_dfa", p.CaptureBwdDFA, &part.CaptureBwdDFA},
		{"suffix_fwd_dfa", p.SuffixFwdDFA, &part.SuffixFwdDFA},
		{"suffix_bwd_dfa", p.SuffixBwdDFA, &part.SuffixBwdDFA},
	} {
		if err := decode(f.name, f.b64, f.dst); err != nil {
			return model.RegexPart{}, err
		}
	}
	return part, nil
}
