package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"bot_dashboard/internal/dto/respond"
	"bot_dashboard/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HandleSuccess 返回成功响应，data 直接作为响应体
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// HandleError 通用错误处理方法
// 业务错误的 Code 即 HTTP 状态码；批量错误附带逐条错误列表；
// 其余错误记录日志并返回 500
func HandleError(c *gin.Context, err error) {
	var batchErr *errorx.BatchError
	if errors.As(err, &batchErr) {
		c.JSON(batchErr.Code, gin.H{
			"errorCode": batchErr.Code,
			"errors":    batchErr.Errors,
		})
		return
	}

	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		if codeErr.Code >= http.StatusInternalServerError {
			zap.L().Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
		}
		c.JSON(codeErr.Code, respond.ErrorRespond{ErrorCode: codeErr.Code, Error: codeErr.Msg})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, respond.ErrorRespond{
		ErrorCode: errorx.ErrServerBusy.Code,
		Error:     errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 处理参数绑定错误
// validator 错误翻译后按字段名排序拼接
func HandleParamError(c *gin.Context, err error) {
	msg := errorx.ErrInvalidParam.Msg

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		translated := RemoveTopStruct(validationErrs.Translate(Trans))
		fields := make([]string, 0, len(translated))
		for field := range translated {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, translated[field])
		}
		msg = strings.Join(parts, "; ")
	} else {
		zap.L().Debug("param bind error", zap.Error(err))
	}

	c.JSON(http.StatusBadRequest, respond.ErrorRespond{ErrorCode: http.StatusBadRequest, Error: msg})
}
