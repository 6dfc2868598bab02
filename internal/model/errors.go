package model

import (
	"errors"
	"fmt"
)

// ErrorCode 为稳定的错误码字符串，供调用方编程分支使用。
type ErrorCode string

const (
	// CodeParameter 参数缺失或非法。
	CodeParameter ErrorCode = "PARAMETER_ERROR"
	// CodeSymbolUnavailable 交易对不存在或不可交易。
	CodeSymbolUnavailable ErrorCode = "SYMBOL_UNAVAILABLE"
	// CodeQuantityRange 数量超出交易所允许范围（含格式化后复检失败）。
	CodeQuantityRange ErrorCode = "QUANTITY_OUT_OF_RANGE"
	// CodeInsufficientBalance 余额不足。
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	// CodeInsufficientPosition 持仓不足以平仓。
	CodeInsufficientPosition ErrorCode = "INSUFFICIENT_POSITION"
	// CodeExchangeRejected 交易所拒单，保留上游原始错误码与报文。
	CodeExchangeRejected ErrorCode = "EXCHANGE_REJECTED"
	// CodeTransport 网络或传输层失败，原样包装不做二次解释。
	CodeTransport ErrorCode = "TRANSPORT_ERROR"
	// CodeUnsupported 交易所或市场类型不支持该操作。
	CodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"
)

// Error 为带错误码的业务错误，跨组件边界始终以返回值传递，不抛出。
type Error struct {
	Code    ErrorCode
	Message string
	// ExchangeCode 上游交易所原始错误码（仅 EXCHANGE_REJECTED）。
	ExchangeCode string
	// Raw 上游原始报文，便于排查。
	Raw string
	Err error
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误。
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError 构造业务错误。
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError 包装底层错误并附加错误码。
func WrapError(code ErrorCode, err error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// AsError 将任意 error 规整为 *Error，未知错误归入 TRANSPORT_ERROR。
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(CodeTransport, err, "未分类的底层错误")
}

// CodeOf 提取错误码，nil 返回空串。
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeTransport
}

// IsCode 判断错误是否携带指定错误码。
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
