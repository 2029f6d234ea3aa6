package spf

import (
	"net"
	"testing"
)

func TestSplitDualCIDR(t *testing.T) {
	testCases := []struct {
		input   string
		host    string
		v4bits  int
		v6bits  int
		wantErr bool
	}{
		{input: "", host: "", v4bits: -1, v6bits: -1},
		{input: "example.com", host: "example.com", v4bits: -1, v6bits: -1},
		{input: "example.com/24", host: "example.com", v4bits: 24, v6bits: -1},
		{input: "example.com//64", host: "example.com", v4bits: -1, v6bits: 64},
		{input: "example.com/24//64", host: "example.com", v4bits: 24, v6bits: 64},
		{input: "/24", host: "", v4bits: 24, v6bits: -1},
		{input: "/0", host: "", v4bits: 0, v6bits: -1},
		{input: "example.com/33", wantErr: true},
		{input: "example.com//129", wantErr: true},
		{input: "example.com/", wantErr: true},
		{input: "example.com//", wantErr: true},
		{input: "example.com/024", wantErr: true},
		{input: "example.com/abc", wantErr: true},
	}
	for _, tc := range testCases {
		host, v4bits, v6bits, err := splitDualCIDR(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("splitDualCIDR(%q) did not return an error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitDualCIDR(%q) returned error: %v", tc.input, err)
			continue
		}
		if host != tc.host || v4bits != tc.v4bits || v6bits != tc.v6bits {
			t.Errorf("splitDualCIDR(%q) = (%q, %d, %d); expected (%q, %d, %d)",
				tc.input, host, v4bits, v6bits, tc.host, tc.v4bits, tc.v6bits)
		}
	}
}

func TestCIDRContains(t *testing.T) {
	testCases := []struct {
		name     string
		client   string
		addr     string
		v4bits   int
		v6bits   int
		expected bool
	}{
		{name: "v4 exact", client: "192.0.2.1", addr: "192.0.2.1", v4bits: -1, v6bits: -1, expected: true},
		{name: "v4 different", client: "192.0.2.1", addr: "192.0.2.2", v4bits: -1, v6bits: -1, expected: false},
		{name: "v4 same /24", client: "192.0.2.1", addr: "192.0.2.200", v4bits: 24, v6bits: -1, expected: true},
		{name: "v4 zero prefix matches anything", client: "192.0.2.1", addr: "198.51.100.1", v4bits: 0, v6bits: -1, expected: true},
		{name: "v6 exact", client: "2001:db8::1", addr: "2001:db8::1", v4bits: -1, v6bits: -1, expected: true},
		{name: "v6 same /64", client: "2001:db8::1", addr: "2001:db8::ffff", v4bits: -1, v6bits: 64, expected: true},
		{name: "v6 different /64", client: "2001:db8:0:1::1", addr: "2001:db8::1", v4bits: -1, v6bits: 64, expected: false},
		{name: "v4 client v6 addr", client: "192.0.2.1", addr: "2001:db8::1", v4bits: 0, v6bits: 0, expected: false},
		{name: "v6 client v4 addr", client: "2001:db8::1", addr: "192.0.2.1", v4bits: 0, v6bits: 0, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := cidrContains(net.ParseIP(tc.client), net.ParseIP(tc.addr), tc.v4bits, tc.v6bits)
			if got != tc.expected {
				t.Errorf("cidrContains(%s, %s, %d, %d) = %v; expected %v",
					tc.client, tc.addr, tc.v4bits, tc.v6bits, got, tc.expected)
			}
		})
	}
}

func TestParseIPNet(t *testing.T) {
	testCases := []struct {
		input    string
		family   int
		expected string
		wantErr  bool
	}{
		{input: "192.0.2.0/24", family: 4, expected: "192.0.2.0/24"},
		{input: "192.0.2.1", family: 4, expected: "192.0.2.1/32"},
		{input: "2001:db8::/32", family: 6, expected: "2001:db8::/32"},
		{input: "2001:db8::1", family: 6, expected: "2001:db8::1/128"},
		{input: "2001:db8::1", family: 4, wantErr: true},
		{input: "192.0.2.1", family: 6, wantErr: true},
		{input: "192.0.2.0/33", family: 4, wantErr: true},
		{input: "not-an-ip", family: 4, wantErr: true},
	}
	for _, tc := range testCases {
		ipnet, err := parseIPNet(tc.input, tc.family)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseIPNet(%q, %d) did not return an error", tc.input, tc.family)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseIPNet(%q, %d) returned error: %v", tc.input, tc.family, err)
			continue
		}
		if ipnet.String() != tc.expected {
			t.Errorf("parseIPNet(%q, %d) = %s; expected %s", tc.input, tc.family, ipnet, tc.expected)
		}
	}
}
