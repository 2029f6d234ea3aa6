package spf

import (
	"strings"

	"golang.org/x/net/idna"
)

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isSPFRecord は TXT 文字列が SPF レコードかどうかを返します (RFC 7208 4.5)。
// "v=spf1" の後には空白か終端が続かなければなりません。"v=spf10" の
// ようなレコードは SPF レコードではありません。
func isSPFRecord(txt string) bool {
	if len(txt) < 6 || !strings.EqualFold(txt[:6], "v=spf1") {
		return false
	}
	return len(txt) == 6 || txt[6] == ' ' || txt[6] == '\t'
}

// normalizeDomain は評価対象ドメインを正規化します。U-label は IDNA で
// A-label に変換し、末尾のドットと大文字を除きます。
func normalizeDomain(domain string) string {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		return ascii
	}
	return strings.ToLower(domain)
}

// isValidDomain はドメイン名の最低限の妥当性を確認します (RFC 1035)。
// SPF インフラで使われる先頭アンダースコアのラベルは許容します。
func isValidDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !isAlpha(c) && !isDigit(c) && c != '-' && c != '_' {
				return false
			}
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
	}
	return true
}

// truncateDomain は 253 オクテットを超えるドメインを左のラベルから
// 切り詰めます (RFC 7208 7.3)。
func truncateDomain(domain string) string {
	for len(domain) > 253 {
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return domain[len(domain)-253:]
		}
		domain = domain[i+1:]
	}
	return domain
}
