package protection

import (
	"context"
	"fmt"
	"net/netip"
)

// HostingRule denies traffic from data-centre networks, where scripted
// signups originate, using a configured CIDR list
type HostingRule struct {
	prefixes []netip.Prefix
}

// NewHostingRule parses the CIDR list
func NewHostingRule(cidrs []string) (*HostingRule, error) {
	r := &HostingRule{}
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, fmt.Errorf("protection: invalid hosting CIDR %q: %w", c, err)
		}
		r.prefixes = append(r.prefixes, p.Masked())
	}
	return r, nil
}

func (r *HostingRule) Name() string { return "hosting" }

func (r *HostingRule) Evaluate(_ context.Context, req *Request) (Decision, error) {
	if len(r.prefixes) == 0 || req.IP == "" {
		return Allow(), nil
	}
	addr, err := netip.ParseAddr(req.IP)
	if err != nil {
		return Allow(), nil
	}
	addr = addr.Unmap()
	for _, p := range r.prefixes {
		if p.Contains(addr) {
			return Deny(ReasonHosting, p.String()), nil
		}
	}
	return Allow(), nil
}
