package votesystem

import (
	"strconv"
	"strings"
)

// GetRequestAuthor 从请求 ID 中解析作者 ID（第一个 "_" 之前的部分）
// 不是数字 ID（如外部导入的 "PVTI_xxx"）时返回空字符串
func GetRequestAuthor(id string) string {
	author, _, _ := strings.Cut(id, "_")
	if author == "" {
		return ""
	}
	if _, err := strconv.ParseUint(author, 10, 64); err != nil {
		return ""
	}
	return author
}
