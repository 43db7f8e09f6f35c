// Package errs 提供带错误码的业务错误类型，供各模块统一使用
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 业务错误码
type Code string

const (
	// CodeInvalidTransition 状态机不允许的状态变更
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	// CodeInsufficientStock 库存不足，变更整体回滚
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	// CodeConcurrentModification 并发修改冲突，调用方应重新读取后重试
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	// CodeValidationFailure 输入校验失败，在事务开启前拒绝
	CodeValidationFailure Code = "VALIDATION_FAILURE"
	// CodeNotFound 实体不存在
	CodeNotFound Code = "NOT_FOUND"
	// CodeForbidden 当前身份不允许执行该操作
	CodeForbidden Code = "FORBIDDEN"
	// CodeInternal 未分类的内部错误
	CodeInternal Code = "INTERNAL"
)

// Error 业务错误
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New 创建业务错误
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf 创建带格式化消息的业务错误
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Is/As 链式判断
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf 提取错误码，非业务错误返回 CodeInternal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode 判断错误链中是否存在指定错误码
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HTTPStatus 将错误码映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidationFailure:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidTransition, CodeConcurrentModification, CodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
