package spf

// Status は SPF 評価の最終結果種別です (RFC 7208 2.6)。
type Status string

const (
	None      Status = "none"
	Neutral   Status = "neutral"
	Pass      Status = "pass"
	Fail      Status = "fail"
	SoftFail  Status = "softfail"
	TempError Status = "temperror"
	PermError Status = "permerror"
)

// Result は 1 回の評価の不変な結果です。Received-SPF ヘッダの生成に
// 必要な情報を保持します。
type Result struct {
	Status      Status
	Mechanism   string // マッチした directive（qualifier を除いた表記、無ければ空）
	Reason      string // 1 行の人間可読な理由
	Explanation string // Fail 時に exp= から解決した説明文（ベストエフォート）
}
