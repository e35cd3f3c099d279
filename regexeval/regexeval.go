// Package regexeval evaluates compiled regex parts against a byte
// slice using paired forward/backward DFA scans, producing capture
// spans without ever compiling a pattern at evaluation time.
package regexeval

import (
	"errors"
	"fmt"

	"github.com/zkemail/zkemail-go/dfa"
	"github.com/zkemail/zkemail-go/model"
)

// ErrUnknownPartKind is a structural error: a RegexPart carries a
// discriminant this evaluator does not know how to interpret.
var ErrUnknownPartKind = errors.New("regexeval: unknown regex part kind")

// EvaluateParts runs MatchPart over every part in order, returning the
// matches that succeeded, ordered by ascending part index. A part that
// finds no match contributes nothing to the result; that is not an
// error.
func EvaluateParts(data []byte, parts []model.RegexPart) ([]model.RegexMatch, error) {
	var matches []model.RegexMatch
	for i, part := range parts {
		m, err := MatchPart(data, part, uint64(i))
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		if m != nil {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

// MatchPart evaluates a single RegexPart against data. It returns a
// nil match (and nil error) when the part has no occurrence in data;
// that is an expected outcome, not a failure.
func MatchPart(data []byte, part model.RegexPart, partIndex uint64) (*model.RegexMatch, error) {
	switch part.Kind {
	case model.RegexPartLiteral:
		return matchLiteral(data, part, partIndex)
	case model.RegexPartPrefixCaptureSuffix:
		return matchPrefixCaptureSuffix(data, part, partIndex)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPartKind, part.Kind)
	}
}

// matchLiteral finds the leftmost occurrence of the compiled pattern
// in data. The forward DFA is compiled to search unanchored (it finds
// the end of the first match at or after a given offset); the
// backward DFA, run from that end, recovers the match's start.
func matchLiteral(data []byte, part model.RegexPart, partIndex uint64) (*model.RegexMatch, error) {
	fwd, err := dfa.Decode(part.PatternFwdDFA)
	if err != nil {
		return nil, fmt.Errorf("pattern_fwd_dfa: %w", err)
	}
	bwd, err := dfa.Decode(part.PatternBwdDFA)
	if err != nil {
		return nil, fmt.Errorf("pattern_bwd_dfa: %w", err)
	}

	for searchFrom := 0; searchFrom <= len(data); {
		end, ok := dfa.ScanForward(fwd, data, searchFrom)
		if !ok {
			return nil, nil
		}
		start, ok := dfa.ScanBackward(bwd, data, end)
		if !ok {
			searchFrom = end + 1
			continue
		}
		return &model.RegexMatch{PartIndex: partIndex, Start: uint64(start), End: uint64(end)}, nil
	}
	return nil, nil
}

// matchPrefixCaptureSuffix locates the leftmost prefix occurrence,
// then anchors a capture and a suffix match immediately after it. The
// capture and suffix forward DFAs run anchored (they must begin
// exactly where the previous segment ended); the backward DFA of each
// segment is used only to confirm the forward scan's start position,
// rejecting a candidate whose compiled forward/backward pair disagree.
func matchPrefixCaptureSuffix(data []byte, part model.RegexPart, partIndex uint64) (*model.RegexMatch, error) {
	prefixFwd, err := dfa.Decode(part.PrefixFwdDFA)
	if err != nil {
		return nil, fmt.Errorf("prefix_fwd_dfa: %w", err)
	}
	prefixBwd, err := dfa.Decode(part.PrefixBwdDFA)
	if err != nil {
		return nil, fmt.Errorf("prefix_bwd_dfa: %w", err)
	}
	captureFwd, err := dfa.Decode(part.CaptureFwdDFA)
	if err != nil {
		return nil, fmt.Errorf("capture_fwd_dfa: %w", err)
	}
	captureBwd, err := dfa.Decode(part.CaptureBwdDFA)
	if err != nil {
		return nil, fmt.Errorf("capture_bwd_dfa: %w", err)
	}
	suffixFwd, err := dfa.Decode(part.SuffixFwdDFA)
	if err != nil {
		return nil, fmt.Errorf("suffix_fwd_dfa: %w", err)
	}
	suffixBwd, err := dfa.Decode(part.SuffixBwdDFA)
	if err != nil {
		return nil, fmt.Errorf("suffix_bwd_dfa: %w", err)
	}

	for searchFrom := 0; searchFrom <= len(data); {
		prefixEnd, ok := dfa.ScanForward(prefixFwd, data, searchFrom)
		if !ok {
			return nil, nil
		}
		if _, ok := dfa.ScanBackward(prefixBwd, data, prefixEnd); !ok {
			searchFrom = prefixEnd + 1
			continue
		}

		captureStart := prefixEnd
		captureEnd, ok := dfa.ScanForward(captureFwd, data, captureStart)
		if !ok || uint64(captureEnd-captureStart) > part.MaxLength {
			searchFrom = prefixEnd + 1
			continue
		}
		if back, ok := dfa.ScanBackward(captureBwd, data, captureEnd); !ok || back != captureStart {
			searchFrom = prefixEnd + 1
			continue
		}

		suffixEnd, ok := dfa.ScanForward(suffixFwd, data, captureEnd)
		if !ok {
			searchFrom = prefixEnd + 1
			continue
		}
		if back, ok := dfa.ScanBackward(suffixBwd, data, suffixEnd); !ok || back != captureEnd {
			searchFrom = prefixEnd + 1
			continue
		}

		capture := make([]byte, captureEnd-captureStart)
		copy(capture, data[captureStart:captureEnd])
		return &model.RegexMatch{
			PartIndex:  partIndex,
			Start:      uint64(captureStart),
			End:        uint64(captureEnd),
			HasCapture: true,
			Capture:    capture,
		}, nil
	}
	return nil, nil
}
