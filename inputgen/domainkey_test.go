package inputgen

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestParseDomainKeyRecord(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		want      domainKeyRecord
		expectErr error
	}{
		{
			name: "valid rsa record",
			raw:  "v=DKIM1; k=rsa; p=AAAA",
			want: domainKeyRecord{Version: "DKIM1", KeyType: "rsa", PublicKeyB64: "AAAA"},
		},
		{
			name: "k tag defaults to rsa",
			raw:  "v=DKIM1; p=AAAA",
			want: domainKeyRecord{Version: "DKIM1", KeyType: "rsa", PublicKeyB64: "AAAA"},
		},
		{
			name:      "unsupported key type",
			raw:       "v=DKIM1; k=ed25519; p=AAAA",
			expectErr: ErrUnsupportedKeyType,
		},
		{
			name:      "bad version",
			raw:       "v=DKIM2; k=rsa; p=AAAA",
			expectErr: ErrInvalidVersion,
		},
		{
			name: "service type email allowed",
			raw:  "v=DKIM1; k=rsa; p=AAAA; s=email",
			want: domainKeyRecord{Version: "DKIM1", KeyType: "rsa", PublicKeyB64: "AAAA", ServiceType: []string{"email"}},
		},
		{
			name:      "service type excludes email",
			raw:       "v=DKIM1; k=rsa; p=AAAA; s=other",
			expectErr: ErrServiceTypeMismatch,
		},
		{
			name: "p tag strips internal whitespace",
			raw:  "v=DKIM1; k=rsa; p=AA AA",
			want: domainKeyRecord{Version: "DKIM1", KeyType: "rsa", PublicKeyB64: "AAAA"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDomainKeyRecord(tc.raw)
			if tc.expectErr != nil {
				if !errors.Is(err, tc.expectErr) {
					t.Fatalf("parseDomainKeyRecord() error = %v, want %v", err, tc.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDomainKeyRecord() unexpected error = %v", err)
			}
			if got.Version != tc.want.Version || got.KeyType != tc.want.KeyType || got.PublicKeyB64 != tc.want.PublicKeyB64 {
				t.Errorf("parseDomainKeyRecord() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

type fakeResolver struct {
	records map[string][]string
	err     error
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[name], nil
}

func TestLookupRSAKey(t *testing.T) {
	keyBytes := []byte{0x01, 0x02, 0x03}
	b64 := base64.StdEncoding.EncodeToString(keyBytes)

	resolver := &fakeResolver{records: map[string][]string{
		"sel._domainkey.example.com": {"v=DKIM1; k=rsa; p=" + b64},
	}}
	logger := zap.NewNop().Sugar()

	got, err := LookupRSAKey(context.Background(), resolver, logger, "sel", "example.com")
	if err != nil {
		t.Fatalf("LookupRSAKey() error = %v", err)
	}
	if string(got) != string(keyBytes) {
		t.Errorf("LookupRSAKey() = %v, want %v", got, keyBytes)
	}
}

func TestLookupRSAKeyRevoked(t *testing.T) {
	resolver := &fakeResolver{records: map[string][]string{
		"sel._domainkey.example.com": {"v=DKIM1; k=rsa; p="},
	}}
	logger := zap.NewNop().Sugar()

	_, err := LookupRSAKey(context.Background(), resolver, logger, "sel", "example.com")
	if !errors.Is(err, ErrKeyRevoked) {
		t.Errorf("LookupRSAKey() error = %v, want ErrKeyRevoked", err)
	}
}

func TestLookupRSAKeyNoRecord(t *testing.T) {
	resolver := &fakeResolver{records: map[string][]string{}}
	logger := zap.NewNop().Sugar()

	_, err := LookupRSAKey(context.Background(), resolver, logger, "sel", "example.com")
	if !errors.Is(err, ErrNoRecordFound) {
		t.Errorf("LookupRSAKey() error = %v, want ErrNoRecordFound", err)
	}
}

func TestLookupRSAKeySkipsUnusableThenFindsValid(t *testing.T) {
	keyBytes := []byte{0xAA, 0xBB}
	b64 := base64.StdEncoding.EncodeToString(keyBytes)
	resolver := &fakeResolver{records: map[string][]string{
		"sel._domainkey.example.com": {
			"v=DKIM1; k=ed25519; p=zzzz",
			"v=DKIM1; k=rsa; p=" + b64,
		},
	}}
	logger := zap.NewNop().Sugar()

	got, err := LookupRSAKey(context.Background(), resolver, logger, "sel", "example.com")
	if err != nil {
		t.Fatalf("LookupRSAKey() error = %v", err)
	}
	if string(got) != string(keyBytes) {
		t.Errorf("LookupRSAKey() = %v, want %v", got, keyBytes)
	}
}
