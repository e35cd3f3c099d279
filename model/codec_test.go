package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPublicKeyRoundTrip(t *testing.T) {
	want := PublicKey{KeyBytes: []byte{0x01, 0x02, 0x03}, KeyType: "rsa"}
	got, err := DecodePublicKey(EncodePublicKey(want))
	if err != nil {
		t.Fatalf("DecodePublicKey() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmailRoundTrip(t *testing.T) {
	want := Email{
		RawEmail:   []byte("From: a@example.com\r\n\r\nhello\r\n"),
		FromDomain: "example.com",
		PublicKey:  PublicKey{KeyBytes: []byte{0xde, 0xad, 0xbe, 0xef}, KeyType: "rsa"},
		ExternalInputs: []ExternalInput{
			{Name: "order_id", MaxLength: 16, Value: []byte("abc123")},
		},
	}
	got, err := DecodeEmail(EncodeEmail(want))
	if err != nil {
		t.Fatalf("DecodeEmail() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRegexPartRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		part RegexPart
	}{
		{
			name: "literal",
			part: RegexPart{
				Kind:          RegexPartLiteral,
				PatternFwdDFA: []byte{1, 2, 3},
				PatternBwdDFA: []byte{4, 5, 6},
			},
		},
		{
			name: "prefix_capture_suffix",
			part: RegexPart{
				Kind:          RegexPartPrefixCaptureSuffix,
				PrefixFwdDFA:  []byte{1},
				PrefixBwdDFA:  []byte{2},
				CaptureFwdDFA: []byte{3},
				CaptureBwdDFA: []byte{4},
				SuffixFwdDFA:  []byte{5},
				SuffixBwdDFA:  []byte{6},
				MaxLength:     32,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeRegexPart(EncodeRegexPart(tc.part))
			if err != nil {
				t.Fatalf("DecodeRegexPart() error = %v", err)
			}
			if diff := cmp.Diff(tc.part, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegexMatchRoundTrip(t *testing.T) {
	testCases := []RegexMatch{
		{PartIndex: 0, Start: 4, End: 12, HasCapture: false},
		{PartIndex: 1, Start: 4, End: 12, HasCapture: true, Capture: []byte("1,234.56")},
	}
	for _, tc := range testCases {
		got, err := DecodeRegexMatch(EncodeRegexMatch(tc))
		if err != nil {
			t.Fatalf("DecodeRegexMatch() error = %v", err)
		}
		if diff := cmp.Diff(tc, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEmailWithRegexVerifierOutputRoundTrip(t *testing.T) {
	want := EmailWithRegexVerifierOutput{
		Email: EmailVerifierOutput{
			FromDomainHash: [32]byte{1, 2, 3},
			PublicKeyHash:  [32]byte{4, 5, 6},
			Verified:       true,
			ExternalInputs: []ExternalInput{{Name: "x", MaxLength: 4, Value: []byte("ab")}},
		},
		HeaderMatches: []RegexMatch{{PartIndex: 0, Start: 1, End: 2}},
		BodyMatches: []RegexMatch{
			{PartIndex: 0, Start: 9, End: 17, HasCapture: true, Capture: []byte("1,234.56")},
		},
	}
	got, err := DecodeEmailWithRegexVerifierOutput(EncodeEmailWithRegexVerifierOutput(want))
	if err != nil {
		t.Fatalf("DecodeEmailWithRegexVerifierOutput() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := DecodePublicKey([]byte{1, 2}); err == nil {
		t.Errorf("DecodePublicKey() on truncated input: want error, got nil")
	}
}

func TestDecodeRegexPartUnknownDiscriminant(t *testing.T) {
	_, err := DecodeRegexPart([]byte{0xff})
	if err == nil {
		t.Fatalf("DecodeRegexPart() want error for unknown discriminant")
	}
}
