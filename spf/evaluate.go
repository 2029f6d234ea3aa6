package spf

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/masa23/spfcheck/dns"
)

// RFC 7208 4.6.4 の処理制限。
const (
	maxLookups     = 10 // DNS ルックアップを伴う term の上限
	maxVoidLookups = 2  // void lookup（NXDOMAIN または空応答）の上限
	maxRecursion   = 10 // include/redirect のネスト上限
	maxMXRecords   = 10 // mx メカニズムが処理する MX RR の上限
	maxPTRNames    = 10 // ptr メカニズムが検証する PTR 名の上限
)

// evalState は 1 回の評価に属する可変状態です。カウンタと訪問済み
// ドメインは include/redirect の再帰全体で共有されます。評価をまたぐ
// 共有状態はありません。
type evalState struct {
	resolver dns.Resolver
	session  *Session
	lookups  int
	voids    int
	depth    int
	visited  map[string]bool
}

// takeLookup は DNS ルックアップを伴う term の実行前に予算を 1 消費します。
// 予算の検査はルックアップの発行前に行います (RFC 7208 4.6.4)。
func (st *evalState) takeLookup() *Result {
	if st.lookups >= maxLookups {
		return &Result{Status: PermError, Reason: "too many DNS lookups"}
	}
	st.lookups++
	return nil
}

// noteVoid は NXDOMAIN または空応答のルックアップを記録します。
func (st *evalState) noteVoid() *Result {
	st.voids++
	if st.voids > maxVoidLookups {
		return &Result{Status: PermError, Reason: "too many void DNS lookups"}
	}
	return nil
}

// classify はリゾルバのエラーを評価結果へ変換します。void は空の応答
// として呼び出し側へ返り、過渡的な失敗とキャンセルは TempError です。
func (st *evalState) classify(what, name string, err error) *Result {
	if dns.IsVoid(err) {
		return st.noteVoid()
	}
	return &Result{Status: TempError, Reason: fmt.Sprintf("%s lookup %s: %v", what, name, err)}
}

func (st *evalState) lookupTXT(ctx context.Context, name string) ([]string, *Result) {
	records, err := st.resolver.LookupTXT(ctx, name)
	if err != nil {
		return nil, st.classify("TXT", name, err)
	}
	return records, nil
}

// lookupAddrs はクライアント IP のアドレスファミリに応じて A または
// AAAA を引きます。
func (st *evalState) lookupAddrs(ctx context.Context, name string) ([]net.IP, *Result) {
	var (
		ips []net.IP
		err error
	)
	if st.session.ClientIP.To4() != nil {
		ips, err = st.resolver.LookupA(ctx, name)
	} else {
		ips, err = st.resolver.LookupAAAA(ctx, name)
	}
	if err != nil {
		return nil, st.classify("address", name, err)
	}
	return ips, nil
}

func (st *evalState) lookupA(ctx context.Context, name string) ([]net.IP, *Result) {
	ips, err := st.resolver.LookupA(ctx, name)
	if err != nil {
		return nil, st.classify("A", name, err)
	}
	return ips, nil
}

func (st *evalState) lookupMX(ctx context.Context, name string) ([]*net.MX, *Result) {
	mxs, err := st.resolver.LookupMX(ctx, name)
	if err != nil {
		return nil, st.classify("MX", name, err)
	}
	return mxs, nil
}

// lookupRecord は domain の TXT RR から SPF レコードを 1 つ選択して
// 解析します (RFC 7208 4.5)。0 件は None、2 件以上は PermError です。
func (st *evalState) lookupRecord(ctx context.Context, domain string) (*Record, *Result) {
	txts, res := st.lookupTXT(ctx, domain)
	if res != nil {
		return nil, res
	}
	var found []string
	for _, txt := range txts {
		if isSPFRecord(txt) {
			found = append(found, txt)
		}
	}
	switch len(found) {
	case 0:
		return nil, &Result{Status: None, Reason: "no SPF record found for " + domain}
	case 1:
		return ParseRecord(found[0])
	}
	return nil, &Result{Status: PermError, Reason: "multiple SPF records found for " + domain}
}

// evaluate は domain の SPF レコードを取得し、directive を宣言順に
// 評価します。最初にマッチした directive で短絡し、マッチが無ければ
// redirect= を適用します (RFC 7208 4.6 - 4.7)。
func (st *evalState) evaluate(ctx context.Context, domain string) *Result {
	if st.depth >= maxRecursion {
		return &Result{Status: PermError, Reason: "include/redirect depth exceeded"}
	}
	lower := strings.ToLower(domain)
	if st.visited[lower] {
		return &Result{Status: PermError, Reason: "include/redirect loop at " + domain}
	}
	st.visited[lower] = true
	st.depth++
	defer func() {
		delete(st.visited, lower)
		st.depth--
	}()

	rec, res := st.lookupRecord(ctx, domain)
	if res != nil {
		return res
	}

	for _, dir := range rec.Directives {
		matched, reason, mres := st.matchDirective(ctx, dir.Mech)
		if mres != nil {
			return mres
		}
		if !matched {
			continue
		}
		result := &Result{
			Status:    dir.Qualifier.Status(),
			Mechanism: dir.Mech.String(),
			Reason:    reason,
		}
		if result.Status == Fail && rec.Exp != "" {
			result.Explanation = st.resolveExplanation(ctx, rec.Exp)
		}
		return result
	}

	if rec.Redirect != "" {
		return st.redirect(ctx, rec.Redirect)
	}
	// all も redirect も無ければ Neutral (RFC 7208 4.7)
	return &Result{Status: Neutral, Reason: "no mechanism matched"}
}

// redirect は redirect= 修飾子を処理します (RFC 7208 6.1)。
// redirect 先の結果がそのままこの評価の結果になります。
func (st *evalState) redirect(ctx context.Context, spec string) *Result {
	if res := st.takeLookup(); res != nil {
		return res
	}
	target, res := st.expandDomainSpec(spec)
	if res != nil {
		return res
	}
	result := st.evaluate(ctx, target)
	if result.Status == None {
		// redirect 先に SPF レコードが無い場合は PermError (RFC 7208 6.1)
		return &Result{Status: PermError, Reason: "redirect target has no SPF record: " + target}
	}
	return result
}

// expandDomainSpec は domain-spec をマクロ展開し、253 オクテットを
// 超えるドメインを左から切り詰めます (RFC 7208 7.3)。
func (st *evalState) expandDomainSpec(spec string) (string, *Result) {
	expanded, err := expandMacros(spec, st.session, false)
	if err != nil {
		return "", &Result{Status: PermError, Reason: "macro expansion: " + err.Error()}
	}
	expanded = strings.TrimSuffix(strings.TrimSpace(expanded), ".")
	if expanded == "" {
		return "", &Result{Status: PermError, Reason: "empty domain-spec after macro expansion"}
	}
	return truncateDomain(expanded), nil
}

// resolveExplanation は exp= の説明文を解決します (RFC 7208 6.2)。
// 説明文の解決はベストエフォートで、どの段階の失敗も Fail という
// 結果自体は変えないため、ここではエラーを返しません。exp 用の TXT
// ルックアップは予算の対象外です。
func (st *evalState) resolveExplanation(ctx context.Context, spec string) string {
	target, err := expandMacros(spec, st.session, false)
	if err != nil {
		return ""
	}
	target = truncateDomain(strings.TrimSuffix(strings.TrimSpace(target), "."))
	if target == "" {
		return ""
	}
	txts, lerr := st.resolver.LookupTXT(ctx, target)
	if lerr != nil || len(txts) != 1 {
		return ""
	}
	text, err := expandMacros(txts[0], st.session, true)
	if err != nil {
		return ""
	}
	// 非 ASCII を含む説明文は破棄します (RFC 7208 6.2)
	for _, r := range text {
		if r > 0x7e || (r < 0x20 && r != '\t') {
			return ""
		}
	}
	return text
}
