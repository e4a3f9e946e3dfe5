// Package repository 提供数据访问层的具体实现
// 本文件包含错误包装辅助函数
package repository

import (
	"net/http"

	"bot_dashboard/pkg/errorx"
)

// wrapDBError 包装数据库错误为 500 CodeError
// 未找到记录的情况由各 Repository 自行处理（返回 nil, nil），不会走到这里
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, http.StatusInternalServerError, msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, http.StatusInternalServerError, format, args...)
}
