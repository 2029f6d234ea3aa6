package dns

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Config contains configuration for the DNS client.
type Config struct {
	// Nameservers is a list of DNS servers to query (e.g. "8.8.8.8:53").
	// If empty, the servers from /etc/resolv.conf are used, falling back
	// to public DNS.
	Nameservers []string

	// Timeout is the timeout for individual DNS queries. Default is 5 seconds.
	Timeout time.Duration

	// Retries is the number of retries for failed queries. Default is 2.
	Retries int
}

// Client implements Resolver using github.com/miekg/dns.
type Client struct {
	config Config
	client *mdns.Client
}

var _ Resolver = (*Client)(nil)

// NewResolver creates a resolver with the given configuration.
// Zero values are replaced by defaults.
func NewResolver(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 2
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = systemNameservers()
	}
	return &Client{
		config: config,
		client: &mdns.Client{Timeout: config.Timeout},
	}
}

// systemNameservers reads the system DNS servers from resolv.conf.
func systemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = s + ":53"
		}
		servers = append(servers, s)
	}
	return servers
}

// query performs a single-question DNS query with retries and maps the
// response code onto the package's classified errors.
func (c *Client) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(name), qtype)
	m.RecursionDesired = true
	m.SetEdns0(4096, false)

	var lastErr error
	for i := 0; i <= c.config.Retries; i++ {
		for _, server := range c.config.Nameservers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			resp, _, err := c.client.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = fmt.Errorf("dns: query %s: %w", name, err)
				continue
			}
			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, ErrNotFound
			case mdns.RcodeServerFailure:
				lastErr = ErrServFail
				continue
			case mdns.RcodeRefused:
				lastErr = ErrRefused
				continue
			default:
				lastErr = fmt.Errorf("%w: rcode %d", ErrBadResponse, resp.Rcode)
				continue
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrServFail
}

// LookupTXT returns the TXT records of name. The character strings of each
// record are concatenated without a separator (RFC 7208 3.3).
func (c *Client) LookupTXT(ctx context.Context, name string) ([]string, error) {
	resp, err := c.query(ctx, name, mdns.TypeTXT)
	if err != nil {
		return nil, err
	}
	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

// LookupA returns the A records of name.
func (c *Client) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	resp, err := c.query(ctx, name, mdns.TypeA)
	if err != nil {
		return nil, err
	}
	var ips []net.IP
	for _, rr := range resp.Answer {
		if a, ok := rr.(*mdns.A); ok {
			ips = append(ips, a.A)
		}
	}
	if len(ips) == 0 {
		return nil, ErrNoData
	}
	return ips, nil
}

// LookupAAAA returns the AAAA records of name.
func (c *Client) LookupAAAA(ctx context.Context, name string) ([]net.IP, error) {
	resp, err := c.query(ctx, name, mdns.TypeAAAA)
	if err != nil {
		return nil, err
	}
	var ips []net.IP
	for _, rr := range resp.Answer {
		if aaaa, ok := rr.(*mdns.AAAA); ok {
			ips = append(ips, aaaa.AAAA)
		}
	}
	if len(ips) == 0 {
		return nil, ErrNoData
	}
	return ips, nil
}

// LookupMX returns the MX records of name in answer order.
func (c *Client) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	resp, err := c.query(ctx, name, mdns.TypeMX)
	if err != nil {
		return nil, err
	}
	var records []*net.MX
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*mdns.MX); ok {
			records = append(records, &net.MX{Host: mx.Mx, Pref: mx.Preference})
		}
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

// LookupPTR performs a reverse lookup of ip in the in-addr.arpa or
// ip6.arpa zone.
func (c *Client) LookupPTR(ctx context.Context, ip net.IP) ([]string, error) {
	if ip == nil {
		return nil, fmt.Errorf("%w: nil IP address", ErrBadResponse)
	}
	arpa, err := mdns.ReverseAddr(ip.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	resp, err := c.query(ctx, arpa, mdns.TypePTR)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*mdns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoData
	}
	return names, nil
}
