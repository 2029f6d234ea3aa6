package dns

import (
	"context"
	"net"
	"slices"
	"strings"
)

// MockResolver is a Resolver backed by in-memory maps, for testing.
// Record maps are keyed by lowercase domain name without a trailing dot;
// PTR is keyed by the IP's presentation form. A name present in no map
// at all behaves as NXDOMAIN.
type MockResolver struct {
	TXT  map[string][]string
	A    map[string][]string
	AAAA map[string][]string
	MX   map[string][]*net.MX
	PTR  map[string][]string

	// Fail lists "type name" pairs that return ErrServFail,
	// e.g. "txt example.com" or "ptr 192.0.2.1".
	Fail []string

	// Queries counts performed lookups by "type name" pair.
	Queries map[string]int
}

var _ Resolver = (*MockResolver)(nil)

func mockKey(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

func (r *MockResolver) note(typ, name string) error {
	key := typ + " " + name
	if r.Queries == nil {
		r.Queries = make(map[string]int)
	}
	r.Queries[key]++
	if slices.Contains(r.Fail, key) {
		return ErrServFail
	}
	return nil
}

// exists reports whether the name is present in any record map.
func (r *MockResolver) exists(name string) bool {
	if _, ok := r.TXT[name]; ok {
		return true
	}
	if _, ok := r.A[name]; ok {
		return true
	}
	if _, ok := r.AAAA[name]; ok {
		return true
	}
	if _, ok := r.MX[name]; ok {
		return true
	}
	return false
}

func (r *MockResolver) missing(name string) error {
	if r.exists(name) {
		return ErrNoData
	}
	return ErrNotFound
}

// LookupTXT returns the configured TXT records for name.
func (r *MockResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := mockKey(name)
	if err := r.note("txt", key); err != nil {
		return nil, err
	}
	records, ok := r.TXT[key]
	if !ok || len(records) == 0 {
		return nil, r.missing(key)
	}
	return records, nil
}

// LookupA returns the configured A records for name.
func (r *MockResolver) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := mockKey(name)
	if err := r.note("a", key); err != nil {
		return nil, err
	}
	records, ok := r.A[key]
	if !ok || len(records) == 0 {
		return nil, r.missing(key)
	}
	ips := make([]net.IP, 0, len(records))
	for _, s := range records {
		ips = append(ips, net.ParseIP(s))
	}
	return ips, nil
}

// LookupAAAA returns the configured AAAA records for name.
func (r *MockResolver) LookupAAAA(ctx context.Context, name string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := mockKey(name)
	if err := r.note("aaaa", key); err != nil {
		return nil, err
	}
	records, ok := r.AAAA[key]
	if !ok || len(records) == 0 {
		return nil, r.missing(key)
	}
	ips := make([]net.IP, 0, len(records))
	for _, s := range records {
		ips = append(ips, net.ParseIP(s))
	}
	return ips, nil
}

// LookupMX returns the configured MX records for name.
func (r *MockResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := mockKey(name)
	if err := r.note("mx", key); err != nil {
		return nil, err
	}
	records, ok := r.MX[key]
	if !ok || len(records) == 0 {
		return nil, r.missing(key)
	}
	return records, nil
}

// LookupPTR returns the configured PTR names for ip.
func (r *MockResolver) LookupPTR(ctx context.Context, ip net.IP) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := ip.String()
	if err := r.note("ptr", key); err != nil {
		return nil, err
	}
	records, ok := r.PTR[key]
	if !ok || len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}
