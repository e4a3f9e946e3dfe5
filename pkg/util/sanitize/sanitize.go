// Package sanitize 清理用户输入中的 HTML，防止 XSS
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// policy StrictPolicy 去除所有标签，Policy 可并发使用
var policy = bluemonday.StrictPolicy()

// Text 去除所有 HTML 标签，保留纯文本（特殊字符转义为实体）
func Text(s string) string {
	return policy.Sanitize(s)
}
