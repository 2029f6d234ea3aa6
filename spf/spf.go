// Package spf は RFC 7208 (Sender Policy Framework) の評価器を実装します。
//
// CheckHost は接続元 IP・MAIL FROM・HELO とドメインを受け取り、
// ドメインの SPF ポリシーを DNS から取得して 7 種類の結果のいずれかを返します。
// DNS トランスポートは dns.Resolver インターフェースとして注入されます。
package spf

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/masa23/spfcheck/dns"
)

// Session は 1 回の評価に対する SMTP セッションの情報です。
// フィールドは評価開始時に確定し、以後変更されません。
// A Session carries the identity tuple of one SMTP session. It is
// immutable for the duration of an evaluation.
type Session struct {
	SenderLocal  string    // MAIL FROM のローカルパート（空なら "postmaster"）
	SenderDomain string    // MAIL FROM のドメイン（空なら HELO ドメイン）
	Helo         string    // HELO/EHLO 名
	ClientIP     net.IP    // 接続元 IP（v4 または v6）
	Receiver     string    // 受信側 SMTP サーバのホスト名
	Now          time.Time // 評価開始時刻（マクロ %{t} で再利用）
}

// NewSession は MAIL FROM と HELO から Session を構築します (RFC 7208 4.3)。
// MAIL FROM が空の場合は postmaster@<helo> を送信者として扱います。
func NewSession(ip net.IP, mailFrom, helo, receiver string) *Session {
	local, domain := "postmaster", ""
	if at := strings.LastIndexByte(mailFrom, '@'); at >= 0 {
		if at > 0 {
			local = mailFrom[:at]
		}
		domain = mailFrom[at+1:]
	} else if mailFrom != "" {
		domain = mailFrom
	}
	if domain == "" {
		domain = helo
	}
	if receiver == "" {
		receiver = "unknown"
	}
	return &Session{
		SenderLocal:  local,
		SenderDomain: domain,
		Helo:         helo,
		ClientIP:     ip,
		Receiver:     receiver,
		Now:          time.Now(),
	}
}

// Sender は envelope-from アドレスを返します。
func (s *Session) Sender() string {
	return s.SenderLocal + "@" + s.SenderDomain
}

// Checker は SPF 評価の入口です。Resolver を差し替えることで
// テスト用のモックや任意のネームサーバを利用できます。
type Checker struct {
	Resolver dns.Resolver
}

// CheckHost は domain の SPF ポリシーを session に対して評価します。
// RFC 7208 の check_host() に相当します。評価中のエラーは Result の
// Status (TempError/PermError) として返り、Go の error にはなりません。
func (c *Checker) CheckHost(ctx context.Context, session *Session, domain string) *Result {
	domain = normalizeDomain(domain)
	if !isValidDomain(domain) {
		return &Result{Status: None, Reason: "invalid domain: " + domain}
	}
	st := &evalState{
		resolver: c.Resolver,
		session:  session,
		visited:  make(map[string]bool),
	}
	return st.evaluate(ctx, domain)
}

// CheckHost はデフォルト設定のリゾルバで domain の SPF ポリシーを評価します。
func CheckHost(ctx context.Context, ip net.IP, domain, mailFrom, helo string) *Result {
	c := &Checker{Resolver: dns.NewResolver(dns.Config{})}
	return c.CheckHost(ctx, NewSession(ip, mailFrom, helo, ""), domain)
}
