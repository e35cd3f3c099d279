package inputgen

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/zkemail/zkemail-go/model"
)

// BuildEmail assembles a model.Email ready for the verification core:
// it reads the raw message off disk and resolves the signer's RSA key
// from its DKIM DNS TXT record. It never invokes the core itself —
// that stays the caller's job, keeping the network/filesystem/logging
// side effects entirely on this side of the boundary.
func BuildEmail(ctx context.Context, resolver TXTResolver, logger *zap.SugaredLogger, cfg Config, externalInputs []model.ExternalInput) (model.Email, error) {
	raw, err := os.ReadFile(cfg.RawEmailPath)
	if err != nil {
		return model.Email{}, fmt.Errorf("inputgen: reading raw email %q: %w", cfg.RawEmailPath, err)
	}

	keyBytes, err := LookupRSAKey(ctx, resolver, logger, cfg.Selector, cfg.Domain)
	if err != nil {
		return model.Email{}, fmt.Errorf("inputgen: resolving dkim key: %w", err)
	}

	return model.Email{
		RawEmail:       raw,
		FromDomain:     cfg.Domain,
		PublicKey:      model.PublicKey{KeyBytes: keyBytes, KeyType: "rsa"},
		ExternalInputs: externalInputs,
	}, nil
}
