package gateway

import "strings"

// trimJSONFence は、AIが付けがちなMarkdownのコードフェンス (```json ... ```)
// と前後の空白を取り除きます。
func trimJSONFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
