package model

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a decode runs out of bytes before a
// record is fully read.
var ErrTruncated = errors.New("model: truncated input")

// ErrUnknownDiscriminant is returned when a tagged variant's
// discriminant byte does not match any known shape.
var ErrUnknownDiscriminant = errors.New("model: unknown discriminant")

// encoder builds the canonical binary encoding: fixed field order,
// little-endian uint32 length prefixes, one-byte tags/discriminants.
type encoder struct {
	buf []byte
}

func (e *encoder) putUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *encoder) putUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *encoder) putByte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) putBool(b bool) {
	if b {
		e.putByte(1)
	} else {
		e.putByte(0)
	}
}

func (e *encoder) putBytes(b []byte) {
	e.putUint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) putString(s string) {
	e.putBytes([]byte(s))
}

// decoder reads a canonical-encoding byte slice in lockstep with the
// encoder above.
type decoder struct {
	b   []byte
	pos int
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.b) {
		return nil, ErrTruncated
	}
	out := d.b[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) uint32() (uint32, error) {
	raw, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (d *decoder) uint64() (uint64, error) {
	raw, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (d *decoder) byteTag() (byte, error) {
	raw, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

func (d *decoder) boolean() (bool, error) {
	tag, err := d.byteTag()
	if err != nil {
		return false, err
	}
	return tag != 0, nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, err
	}
	raw, err := d.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (d *decoder) str() (string, error) {
	raw, err := d.bytes()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (d *decoder) done() bool {
	return d.pos >= len(d.b)
}

// EncodePublicKey serializes a PublicKey: key_type then key_bytes.
func EncodePublicKey(k PublicKey) []byte {
	e := &encoder{}
	e.putString(k.KeyType)
	e.putBytes(k.KeyBytes)
	return e.buf
}

// DecodePublicKey is the inverse of EncodePublicKey.
func DecodePublicKey(b []byte) (PublicKey, error) {
	d := &decoder{b: b}
	keyType, err := d.str()
	if err != nil {
		return PublicKey{}, fmt.Errorf("public key key_type: %w", err)
	}
	keyBytes, err := d.bytes()
	if err != nil {
		return PublicKey{}, fmt.Errorf("public key key_bytes: %w", err)
	}
	return PublicKey{KeyType: keyType, KeyBytes: keyBytes}, nil
}

func encodeExternalInput(e *encoder, v ExternalInput) {
	e.putString(v.Name)
	e.putUint64(v.MaxLength)
	e.putBytes(v.Value)
}

func decodeExternalInput(d *decoder) (ExternalInput, error) {
	name, err := d.str()
	if err != nil {
		return ExternalInput{}, fmt.Errorf("external_input name: %w", err)
	}
	maxLen, err := d.uint64()
	if err != nil {
		return ExternalInput{}, fmt.Errorf("external_input max_length: %w", err)
	}
	value, err := d.bytes()
	if err != nil {
		return ExternalInput{}, fmt.Errorf("external_input value: %w", err)
	}
	return ExternalInput{Name: name, MaxLength: maxLen, Value: value}, nil
}

func encodeExternalInputs(e *encoder, vs []ExternalInput) {
	e.putUint32(uint32(len(vs)))
	for _, v := range vs {
		encodeExternalInput(e, v)
	}
}

func decodeExternalInputs(d *decoder) ([]ExternalInput, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("external_inputs length: %w", err)
	}
	out := make([]ExternalInput, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := decodeExternalInput(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeEmail serializes an Email record.
func EncodeEmail(v Email) []byte {
	e := &encoder{}
	e.putBytes(v.RawEmail)
	e.putString(v.FromDomain)
	e.putBytes(EncodePublicKey(v.PublicKey))
	encodeExternalInputs(e, v.ExternalInputs)
	return e.buf
}

// DecodeEmail is the inverse of EncodeEmail.
func DecodeEmail(b []byte) (Email, error) {
	d := &decoder{b: b}
	raw, err := d.bytes()
	if err != nil {
		return Email{}, fmt.Errorf("email raw_email: %w", err)
	}
	fromDomain, err := d.str()
	if err != nil {
		return Email{}, fmt.Errorf("email from_domain: %w", err)
	}
	pkBytes, err := d.bytes()
	if err != nil {
		return Email{}, fmt.Errorf("email public_key: %w", err)
	}
	pk, err := DecodePublicKey(pkBytes)
	if err != nil {
		return Email{}, err
	}
	ext, err := decodeExternalInputs(d)
	if err != nil {
		return Email{}, err
	}
	return Email{RawEmail: raw, FromDomain: fromDomain, PublicKey: pk, ExternalInputs: ext}, nil
}

// EncodeRegexPart serializes a RegexPart, a tagged variant
// discriminated by a leading Kind byte.
func EncodeRegexPart(p RegexPart) []byte {
	e := &encoder{}
	e.putByte(byte(p.Kind))
	switch p.Kind {
	case RegexPartLiteral:
		e.putBytes(p.PatternFwdDFA)
		e.putBytes(p.PatternBwdDFA)
	case RegexPartPrefixCaptureSuffix:
		e.putBytes(p.PrefixFwdDFA)
		e.putBytes(p.PrefixBwdDFA)
		e.putBytes(p.CaptureFwdDFA)
		e.putBytes(p.CaptureBwdDFA)
		e.putBytes(p.SuffixFwdDFA)
		e.putBytes(p.SuffixBwdDFA)
		e.putUint64(p.MaxLength)
	}
	return e.buf
}

// DecodeRegexPart is the inverse of EncodeRegexPart.
func DecodeRegexPart(b []byte) (RegexPart, error) {
	d := &decoder{b: b}
	kind, err := d.byteTag()
	if err != nil {
		return RegexPart{}, fmt.Errorf("regex_part kind: %w", err)
	}
	switch RegexPartKind(kind) {
	case RegexPartLiteral:
		fwd, err := d.bytes()
		if err != nil {
			return RegexPart{}, fmt.Errorf("regex_part pattern_fwd_dfa: %w", err)
		}
		bwd, err := d.bytes()
		if err != nil {
			return RegexPart{}, fmt.Errorf("regex_part pattern_bwd_dfa: %w", err)
		}
		return RegexPart{Kind: RegexPartLiteral, PatternFwdDFA: fwd, PatternBwdDFA: bwd}, nil
	case RegexPartPrefixCaptureSuffix:
		var p RegexPart
		p.Kind = RegexPartPrefixCaptureSuffix
		fields := []*[]byte{&p.PrefixFwdDFA, &p.PrefixBwdDFA, &p.CaptureFwdDFA, &p.CaptureBwdDFA, &p.SuffixFwdDFA, &p.SuffixBwdDFA}
		for _, f := range fields {
			v, err := d.bytes()
			if err != nil {
				return RegexPart{}, fmt.Errorf("regex_part dfa field: %w", err)
			}
			*f = v
		}
		maxLen, err := d.uint64()
		if err != nil {
			return RegexPart{}, fmt.Errorf("regex_part max_length: %w", err)
		}
		p.MaxLength = maxLen
		return p, nil
	default:
		return RegexPart{}, fmt.Errorf("%w: %d", ErrUnknownDiscriminant, kind)
	}
}

func encodeRegexParts(e *encoder, parts []RegexPart) {
	e.putUint32(uint32(len(parts)))
	for _, p := range parts {
		e.putBytes(EncodeRegexPart(p))
	}
}

func decodeRegexParts(d *decoder) ([]RegexPart, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("regex_parts length: %w", err)
	}
	out := make([]RegexPart, 0, n)
	for i := uint32(0); i < n; i++ {
		raw, err := d.bytes()
		if err != nil {
			return nil, fmt.Errorf("regex_parts[%d]: %w", i, err)
		}
		p, err := DecodeRegexPart(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodeRegexInput serializes a RegexInput.
func EncodeRegexInput(v RegexInput) []byte {
	e := &encoder{}
	encodeRegexParts(e, v.HeaderParts)
	encodeRegexParts(e, v.BodyParts)
	return e.buf
}

// DecodeRegexInput is the inverse of EncodeRegexInput.
func DecodeRegexInput(b []byte) (RegexInput, error) {
	d := &decoder{b: b}
	headerParts, err := decodeRegexParts(d)
	if err != nil {
		return RegexInput{}, fmt.Errorf("regex_input header_parts: %w", err)
	}
	bodyParts, err := decodeRegexParts(d)
	if err != nil {
		return RegexInput{}, fmt.Errorf("regex_input body_parts: %w", err)
	}
	return RegexInput{HeaderParts: headerParts, BodyParts: bodyParts}, nil
}

// EncodeEmailWithRegex serializes an EmailWithRegex.
func EncodeEmailWithRegex(v EmailWithRegex) []byte {
	e := &encoder{}
	e.putBytes(EncodeEmail(v.Email))
	e.putBytes(EncodeRegexInput(v.RegexInput))
	return e.buf
}

// DecodeEmailWithRegex is the inverse of EncodeEmailWithRegex.
func DecodeEmailWithRegex(b []byte) (EmailWithRegex, error) {
	d := &decoder{b: b}
	emailBytes, err := d.bytes()
	if err != nil {
		return EmailWithRegex{}, fmt.Errorf("email_with_regex email: %w", err)
	}
	email, err := DecodeEmail(emailBytes)
	if err != nil {
		return EmailWithRegex{}, err
	}
	regexBytes, err := d.bytes()
	if err != nil {
		return EmailWithRegex{}, fmt.Errorf("email_with_regex regex_input: %w", err)
	}
	regexInput, err := DecodeRegexInput(regexBytes)
	if err != nil {
		return EmailWithRegex{}, err
	}
	return EmailWithRegex{Email: email, RegexInput: regexInput}, nil
}

// EncodeRegexMatch serializes a RegexMatch; capture uses a one-byte
// optional tag (0 absent, 1 present).
func EncodeRegexMatch(v RegexMatch) []byte {
	e := &encoder{}
	e.putUint64(v.PartIndex)
	e.putUint64(v.Start)
	e.putUint64(v.End)
	e.putBool(v.HasCapture)
	if v.HasCapture {
		e.putBytes(v.Capture)
	}
	return e.buf
}

// DecodeRegexMatch is the inverse of EncodeRegexMatch.
func DecodeRegexMatch(b []byte) (RegexMatch, error) {
	d := &decoder{b: b}
	partIndex, err := d.uint64()
	if err != nil {
		return RegexMatch{}, fmt.Errorf("regex_match part_index: %w", err)
	}
	start, err := d.uint64()
	if err != nil {
		return RegexMatch{}, fmt.Errorf("regex_match start: %w", err)
	}
	end, err := d.uint64()
	if err != nil {
		return RegexMatch{}, fmt.Errorf("regex_match end: %w", err)
	}
	hasCapture, err := d.boolean()
	if err != nil {
		return RegexMatch{}, fmt.Errorf("regex_match capture tag: %w", err)
	}
	var capture []byte
	if hasCapture {
		capture, err = d.bytes()
		if err != nil {
			return RegexMatch{}, fmt.Errorf("regex_match capture: %w", err)
		}
	}
	return RegexMatch{PartIndex: partIndex, Start: start, End: end, HasCapture: hasCapture, Capture: capture}, nil
}

func encodeRegexMatches(e *encoder, matches []RegexMatch) {
	e.putUint32(uint32(len(matches)))
	for _, m := range matches {
		e.putBytes(EncodeRegexMatch(m))
	}
}

func decodeRegexMatches(d *decoder) ([]RegexMatch, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("regex_matches length: %w", err)
	}
	out := make([]RegexMatch, 0, n)
	for i := uint32(0); i < n; i++ {
		raw, err := d.bytes()
		if err != nil {
			return nil, fmt.Errorf("regex_matches[%d]: %w", i, err)
		}
		m, err := DecodeRegexMatch(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// EncodeEmailVerifierOutput serializes an EmailVerifierOutput.
func EncodeEmailVerifierOutput(v EmailVerifierOutput) []byte {
	e := &encoder{}
	e.buf = append(e.buf, v.FromDomainHash[:]...)
	e.buf = append(e.buf, v.PublicKeyHash[:]...)
	e.putBool(v.Verified)
	encodeExternalInputs(e, v.ExternalInputs)
	return e.buf
}

// DecodeEmailVerifierOutput is the inverse of EncodeEmailVerifierOutput.
func DecodeEmailVerifierOutput(b []byte) (EmailVerifierOutput, error) {
	d := &decoder{b: b}
	fromHash, err := d.take(32)
	if err != nil {
		return EmailVerifierOutput{}, fmt.Errorf("output from_domain_hash: %w", err)
	}
	pkHash, err := d.take(32)
	if err != nil {
		return EmailVerifierOutput{}, fmt.Errorf("output public_key_hash: %w", err)
	}
	verified, err := d.boolean()
	if err != nil {
		return EmailVerifierOutput{}, fmt.Errorf("output verified: %w", err)
	}
	ext, err := decodeExternalInputs(d)
	if err != nil {
		return EmailVerifierOutput{}, err
	}
	var out EmailVerifierOutput
	copy(out.FromDomainHash[:], fromHash)
	copy(out.PublicKeyHash[:], pkHash)
	out.Verified = verified
	out.ExternalInputs = ext
	return out, nil
}

// EncodeEmailWithRegexVerifierOutput serializes an
// EmailWithRegexVerifierOutput.
func EncodeEmailWithRegexVerifierOutput(v EmailWithRegexVerifierOutput) []byte {
	e := &encoder{}
	e.putBytes(EncodeEmailVerifierOutput(v.Email))
	encodeRegexMatches(e, v.HeaderMatches)
	encodeRegexMatches(e, v.BodyMatches)
	return e.buf
}

// DecodeEmailWithRegexVerifierOutput is the inverse of
// EncodeEmailWithRegexVerifierOutput.
func DecodeEmailWithRegexVerifierOutput(b []byte) (EmailWithRegexVerifierOutput, error) {
	d := &decoder{b: b}
	emailBytes, err := d.bytes()
	if err != nil {
		return EmailWithRegexVerifierOutput{}, fmt.Errorf("output email: %w", err)
	}
	email, err := DecodeEmailVerifierOutput(emailBytes)
	if err != nil {
		return EmailWithRegexVerifierOutput{}, err
	}
	headerMatches, err := decodeRegexMatches(d)
	if err != nil {
		return EmailWithRegexVerifierOutput{}, fmt.Errorf("output header_matches: %w", err)
	}
	bodyMatches, err := decodeRegexMatches(d)
	if err != nil {
		return EmailWithRegexVerifierOutput{}, fmt.Errorf("output body_matches: %w", err)
	}
	return EmailWithRegexVerifierOutput{Email: email, HeaderMatches: headerMatches, BodyMatches: bodyMatches}, nil
}
