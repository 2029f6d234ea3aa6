package spf

import (
	"fmt"
	"strings"
)

// ReceivedSPF は Result を Received-SPF ヘッダフィールドのボディとして
// 整形します (RFC 7208 9.1)。ヘッダ名と折り返しは呼び出し側の責務です。
func (r *Result) ReceivedSPF(s *Session) string {
	var b strings.Builder
	b.WriteString(string(r.Status))

	b.WriteString(" (")
	if r.Explanation != "" {
		b.WriteString(r.Explanation)
	} else {
		if s.Receiver != "" {
			b.WriteString(s.Receiver)
			b.WriteString(": ")
		}
		b.WriteString(r.comment(s))
	}
	b.WriteString(")")

	b.WriteString(" identity=mailfrom")
	writeKV(&b, "client-ip", s.ClientIP.String())
	writeKV(&b, "envelope-from", `"`+s.Sender()+`"`)
	writeKV(&b, "helo", s.Helo)
	writeKV(&b, "receiver", s.Receiver)
	writeKV(&b, "mechanism", r.Mechanism)
	return b.String()
}

// comment は結果種別ごとの説明コメントを返します。
func (r *Result) comment(s *Session) string {
	sender := s.Sender()
	host := "the client"
	if s.ClientIP != nil {
		host = s.ClientIP.String()
	}
	switch r.Status {
	case Pass:
		return fmt.Sprintf("domain of %s designates %s as permitted sender", sender, host)
	case Fail:
		return fmt.Sprintf("domain of %s does not designate %s as permitted sender", sender, host)
	case SoftFail:
		return fmt.Sprintf("domain of %s does not designate %s as permitted sender but is in transition", sender, host)
	case Neutral:
		return fmt.Sprintf("domain of %s says nothing about %s", sender, host)
	case None:
		return fmt.Sprintf("domain of %s has no SPF policy", sender)
	case TempError:
		return "a transient error occurred: " + r.Reason
	case PermError:
		return "a permanent error occurred: " + r.Reason
	}
	return r.Reason
}

func writeKV(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString("; ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(value)
}
