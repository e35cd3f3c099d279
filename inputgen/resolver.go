// Package inputgen is the host-side collaborator that turns a raw
// email file and a DNS-published DKIM key into the model.Email the
// verification core expects. It lives outside the core: it performs
// network I/O, reads the clock indirectly through context timeouts,
// and logs — none of which the core is allowed to do.
package inputgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

const dnsTimeout = 5 * time.Second

var (
	// ErrNoRecordFound means the DNS query succeeded but returned no
	// usable DKIM TXT record.
	ErrNoRecordFound = errors.New("inputgen: no dkim record found")
	// ErrDNSLookupFailed means the DNS query itself failed.
	ErrDNSLookupFailed = errors.New("inputgen: dns lookup failed")
)

// TXTResolver performs DNS TXT record lookups. Tests substitute a fake
// implementation instead of hitting the network.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

type netResolver struct {
	resolver *net.Resolver
}

// NewResolver returns a TXTResolver backed by the system's default
// DNS resolver.
func NewResolver() TXTResolver {
	return &netResolver{resolver: net.DefaultResolver}
}

func (r *netResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	return r.resolver.LookupTXT(ctx, name)
}

// lookupTXT runs a single bounded-timeout TXT lookup and logs its
// outcome; DNS errors are folded into the two sentinels above so
// callers don't need to inspect *net.DNSError themselves.
func lookupTXT(ctx context.Context, resolver TXTResolver, logger *zap.SugaredLogger, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	records, err := resolver.LookupTXT(ctx, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			logger.Infow("dkim txt record not found", "query", name)
			return nil, ErrNoRecordFound
		}
		logger.Warnw("dkim txt lookup failed", "query", name, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDNSLookupFailed, err)
	}
	logger.Infow("dkim txt lookup succeeded", "query", name, "records", len(records))
	return records, nil
}
