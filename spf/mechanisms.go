package spf

import (
	"context"
	"fmt"
	"strings"

	"github.com/masa23/spfcheck/dns"
)

// matchDirective はメカニズム種別ごとのマッチ処理へディスパッチします。
// 戻り値は (マッチしたか, 理由, エラー結果) で、エラー結果が nil 以外の
// ときは評価全体がその結果で終了します。
func (st *evalState) matchDirective(ctx context.Context, m Mechanism) (bool, string, *Result) {
	switch m.Kind {
	case MechAll:
		return true, "matched all", nil
	case MechIP4, MechIP6:
		return st.matchIPNet(m)
	case MechA:
		return st.matchA(ctx, m)
	case MechMX:
		return st.matchMX(ctx, m)
	case MechPTR:
		return st.matchPTR(ctx, m)
	case MechInclude:
		return st.matchInclude(ctx, m)
	case MechExists:
		return st.matchExists(ctx, m)
	}
	return false, "", &Result{Status: PermError, Reason: fmt.Sprintf("unsupported mechanism %q", m.Kind)}
}

// matchIPNet は ip4/ip6 メカニズムを評価します。クライアント IP の
// アドレスファミリがネットワークと異なる場合はマッチしません。
func (st *evalState) matchIPNet(m Mechanism) (bool, string, *Result) {
	ip := st.session.ClientIP
	if m.Kind == MechIP4 && ip.To4() == nil {
		return false, "", nil
	}
	if m.Kind == MechIP6 && ip.To4() != nil {
		return false, "", nil
	}
	if !m.Net.Contains(ip) {
		return false, "", nil
	}
	return true, fmt.Sprintf("%s in CIDR %s", ip, m.Net), nil
}

// targetDomain は domain-spec を展開します。省略時は送信者ドメインです。
func (st *evalState) targetDomain(m Mechanism) (string, *Result) {
	if m.Domain == "" {
		return st.session.SenderDomain, nil
	}
	return st.expandDomainSpec(m.Domain)
}

// matchA は a メカニズムを評価します (RFC 7208 5.3)。対象ドメインの
// A/AAAA をクライアント IP のファミリに合わせて引き、dual-cidr を
// 適用して照合します。
func (st *evalState) matchA(ctx context.Context, m Mechanism) (bool, string, *Result) {
	if res := st.takeLookup(); res != nil {
		return false, "", res
	}
	host, res := st.targetDomain(m)
	if res != nil {
		return false, "", res
	}
	ips, res := st.lookupAddrs(ctx, host)
	if res != nil {
		return false, "", res
	}
	for _, addr := range ips {
		if cidrContains(st.session.ClientIP, addr, m.V4Bits, m.V6Bits) {
			return true, fmt.Sprintf("%s matched address %s of %s", st.session.ClientIP, addr, host), nil
		}
	}
	return false, "", nil
}

// matchMX は mx メカニズムを評価します (RFC 7208 5.4)。MX RR は
// 10 件までで、超過は PermError です。各 exchange のアドレス解決は
// ルックアップ予算を消費しませんが、void には計上されます。
func (st *evalState) matchMX(ctx context.Context, m Mechanism) (bool, string, *Result) {
	if res := st.takeLookup(); res != nil {
		return false, "", res
	}
	host, res := st.targetDomain(m)
	if res != nil {
		return false, "", res
	}
	mxs, res := st.lookupMX(ctx, host)
	if res != nil {
		return false, "", res
	}
	if len(mxs) > maxMXRecords {
		return false, "", &Result{Status: PermError, Reason: "too many MX records for " + host}
	}
	for _, mx := range mxs {
		exchange := strings.TrimSuffix(mx.Host, ".")
		ips, res := st.lookupAddrs(ctx, exchange)
		if res != nil {
			return false, "", res
		}
		for _, addr := range ips {
			if cidrContains(st.session.ClientIP, addr, m.V4Bits, m.V6Bits) {
				return true, fmt.Sprintf("%s matched %s (MX of %s)", st.session.ClientIP, exchange, host), nil
			}
		}
	}
	return false, "", nil
}

// matchPTR は ptr メカニズムを評価します (RFC 7208 5.5)。逆引きで得た
// 名前のうち、正引きがクライアント IP を含むものだけが検証済みです。
// 逆引きの失敗はマッチしないだけで、エラーにはなりません。
func (st *evalState) matchPTR(ctx context.Context, m Mechanism) (bool, string, *Result) {
	if res := st.takeLookup(); res != nil {
		return false, "", res
	}
	target, res := st.targetDomain(m)
	if res != nil {
		return false, "", res
	}
	names, err := st.resolver.LookupPTR(ctx, st.session.ClientIP)
	if err != nil {
		if dns.IsVoid(err) {
			if res := st.noteVoid(); res != nil {
				return false, "", res
			}
		}
		return false, "", nil
	}
	if len(names) > maxPTRNames {
		names = names[:maxPTRNames]
	}
	target = strings.ToLower(target)
	for _, name := range names {
		name = strings.TrimSuffix(name, ".")
		ips, res := st.lookupAddrs(ctx, name)
		if res != nil {
			if res.Status == PermError {
				return false, "", res
			}
			// 検証に失敗した名前はスキップします
			continue
		}
		validated := false
		for _, addr := range ips {
			if addr.Equal(st.session.ClientIP) {
				validated = true
				break
			}
		}
		if !validated {
			continue
		}
		lower := strings.ToLower(name)
		if lower == target || strings.HasSuffix(lower, "."+target) {
			return true, fmt.Sprintf("validated PTR name %s is within %s", name, target), nil
		}
	}
	return false, "", nil
}

// matchInclude は include メカニズムを評価します (RFC 7208 5.2)。
// 対象ドメインをサブ評価し、結果を次のとおり対応付けます:
// Pass はマッチ、Fail/SoftFail/Neutral は非マッチ、TempError はそのまま、
// PermError と None は PermError。
func (st *evalState) matchInclude(ctx context.Context, m Mechanism) (bool, string, *Result) {
	if res := st.takeLookup(); res != nil {
		return false, "", res
	}
	target, res := st.expandDomainSpec(m.Domain)
	if res != nil {
		return false, "", res
	}
	sub := st.evaluate(ctx, target)
	switch sub.Status {
	case Pass:
		return true, fmt.Sprintf("%s authorized by include:%s", st.session.ClientIP, target), nil
	case Fail, SoftFail, Neutral:
		return false, "", nil
	case TempError, PermError:
		return false, "", sub
	}
	// None
	return false, "", &Result{Status: PermError, Reason: "include target has no SPF record: " + target}
}

// matchExists は exists メカニズムを評価します (RFC 7208 5.7)。
// クライアント IP のファミリに関わらず A のみを引きます。
func (st *evalState) matchExists(ctx context.Context, m Mechanism) (bool, string, *Result) {
	if res := st.takeLookup(); res != nil {
		return false, "", res
	}
	host, res := st.expandDomainSpec(m.Domain)
	if res != nil {
		return false, "", res
	}
	ips, res := st.lookupA(ctx, host)
	if res != nil {
		return false, "", res
	}
	if len(ips) == 0 {
		return false, "", nil
	}
	return true, host + " has at least one A record", nil
}
