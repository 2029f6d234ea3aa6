package spf

import (
	"strings"
	"testing"
)

func TestIsSPFRecord(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{input: "v=spf1", expected: true},
		{input: "v=spf1 -all", expected: true},
		{input: "V=SPF1 -all", expected: true},
		{input: "v=spf10 -all", expected: false},
		{input: "v=spf1x", expected: false},
		{input: "spf1 -all", expected: false},
		{input: "", expected: false},
	}
	for _, tc := range testCases {
		if got := isSPFRecord(tc.input); got != tc.expected {
			t.Errorf("isSPFRecord(%q) = %v; expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "EXAMPLE.COM.", expected: "example.com"},
		{input: "example.com", expected: "example.com"},
		{input: "bücher.example", expected: "xn--bcher-kva.example"},
		{input: "  example.com ", expected: "example.com"},
	}
	for _, tc := range testCases {
		if got := normalizeDomain(tc.input); got != tc.expected {
			t.Errorf("normalizeDomain(%q) = %q; expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestIsValidDomain(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{input: "example.com", expected: true},
		{input: "_spf.example.com", expected: true},
		{input: "mx-1.example.com", expected: true},
		{input: "", expected: false},
		{input: "singlelabel", expected: false},
		{input: "bad..dots.example", expected: false},
		{input: "-leading.example.com", expected: false},
		{input: "trailing-.example.com", expected: false},
		{input: "exa$mple.com", expected: false},
		{input: strings.Repeat("a", 64) + ".example.com", expected: false},
		{input: strings.Repeat("a.", 127) + strings.Repeat("b", 10), expected: false},
	}
	for _, tc := range testCases {
		if got := isValidDomain(tc.input); got != tc.expected {
			t.Errorf("isValidDomain(%q) = %v; expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestTruncateDomain(t *testing.T) {
	short := "example.com"
	if got := truncateDomain(short); got != short {
		t.Errorf("truncateDomain(%q) = %q; expected it unchanged", short, got)
	}

	// 5 + 250 = 255 オクテットで 253 を超えるため、左のラベルが落ちます
	long := "abcd." + strings.Repeat("x", 250)
	got := truncateDomain(long)
	if got != strings.Repeat("x", 250) {
		t.Errorf("truncateDomain dropped the wrong labels: %q", got)
	}
	if len(got) > 253 {
		t.Errorf("truncateDomain result is %d octets; expected at most 253", len(got))
	}
}
