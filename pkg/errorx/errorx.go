// Package errorx 提供带 HTTP 状态码的业务错误类型
// 业务规则失败（校验、鉴权、冲突、未找到）一律以 *CodeError 值返回，
// 调用方通过 errors.As / GetCode 分支处理，不依赖 panic
package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError 带错误码的自定义错误
// Code 始终是合法的 HTTP 状态码，HTTP 层直接将其作为响应状态码
type CodeError struct {
	Code  int    // HTTP 状态码
	Msg   string // 面向用户的错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加错误码和消息
// 用法: errorx.Wrap(err, http.StatusInternalServerError, "load feature request")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取错误码，如果不是 CodeError 则返回 500
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Code
	}
	return http.StatusInternalServerError
}

// ItemError 批量操作中单个条目的错误
type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchError 批量操作失败
// 只要有一个条目失败，整个调用即视为失败（即便部分条目已落库）
type BatchError struct {
	Code   int
	Errors []ItemError
}

func (e *BatchError) Error() string {
	if len(e.Errors) == 0 {
		return "batch failed"
	}
	return fmt.Sprintf("batch failed on %d item(s), first: %s: %s", len(e.Errors), e.Errors[0].ID, e.Errors[0].Error)
}

// 预定义常用错误实例
var (
	ErrInvalidParam = New(http.StatusBadRequest, "Invalid request parameters.")
	ErrServerBusy   = New(http.StatusInternalServerError, "Internal server error.")
)
