// Package dns provides the typed DNS lookups needed for SPF evaluation.
//
// The evaluation engine depends only on the Resolver interface; the
// concrete transport lives in resolver.go and is built on
// github.com/miekg/dns. MockResolver is a map-backed implementation
// for tests.
package dns

import (
	"context"
	"errors"
	"net"
)

// Classified lookup failures. The SPF engine distinguishes lookups that
// returned no usable answer (void lookups) from transient failures.
var (
	// ErrNotFound is returned when the queried name does not exist (NXDOMAIN).
	ErrNotFound = errors.New("dns: name not found")
	// ErrNoData is returned when the name exists but has no records of the
	// queried type (NOERROR with an empty answer section).
	ErrNoData = errors.New("dns: no data")
	// ErrServFail is returned for a SERVFAIL response.
	ErrServFail = errors.New("dns: server failure")
	// ErrRefused is returned when the server refused the query.
	ErrRefused = errors.New("dns: query refused")
	// ErrBadResponse is returned for a malformed or unexpected response.
	ErrBadResponse = errors.New("dns: bad response")
)

// IsVoid reports whether err represents a lookup that returned no usable
// answer, i.e. NXDOMAIN or an empty answer section (RFC 7208 4.6.4).
func IsVoid(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData)
}

// Resolver provides the DNS lookups used during SPF evaluation.
// Implementations return the records on success, or one of the classified
// errors above; every call honors the context deadline.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupA(ctx context.Context, name string) ([]net.IP, error)
	LookupAAAA(ctx context.Context, name string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupPTR(ctx context.Context, ip net.IP) ([]string, error)
}
