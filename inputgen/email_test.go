package inputgen

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestBuildEmail(t *testing.T) {
	dir := t.TempDir()
	emailPath := filepath.Join(dir, "message.eml")
	rawEmail := "From: a@example.com\r\n\r\nhello\r\n"
	if err := os.WriteFile(emailPath, []byte(rawEmail), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	keyBytes := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	resolver := &fakeResolver{records: map[string][]string{
		"sel._domainkey.example.com": {"v=DKIM1; k=rsa; p=" + base64.StdEncoding.EncodeToString(keyBytes)},
	}}
	cfg := Config{Selector: "sel", Domain: "example.com", RawEmailPath: emailPath}

	email, err := BuildEmail(context.Background(), resolver, zap.NewNop().Sugar(), cfg, nil)
	if err != nil {
		t.Fatalf("BuildEmail() error = %v", err)
	}
	if string(email.RawEmail) != rawEmail {
		t.Errorf("BuildEmail() RawEmail = %q, want %q", email.RawEmail, rawEmail)
	}
	if email.FromDomain != "example.com" {
		t.Errorf("BuildEmail() FromDomain = %q", email.FromDomain)
	}
	if string(email.PublicKey.KeyBytes) != string(keyBytes) || email.PublicKey.KeyType != "rsa" {
		t.Errorf("BuildEmail() PublicKey = %+v", email.PublicKey)
	}
}

func TestBuildEmailMissingFile(t *testing.T) {
	cfg := Config{Selector: "sel", Domain: "example.com", RawEmailPath: "/nonexistent/message.eml"}
	_, err := BuildEmail(context.Background(), &fakeResolver{}, zap.NewNop().Sugar(), cfg, nil)
	if err == nil {
		t.Fatalf("BuildEmail() expected error for missing raw email file")
	}
}
