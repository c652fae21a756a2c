package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误
	ErrCodeInternalServer   ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// 会话管道错误
	ErrCodeIdentityMissing      ErrorCode = "IDENTITY_MISSING"
	ErrCodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeLimitReached         ErrorCode = "LIMIT_REACHED"
	ErrCodeGenerationFailed     ErrorCode = "GENERATION_FAILED"

	// 数据库错误
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// 外部服务错误
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTranscribeFailed ErrorCode = "TRANSCRIBE_FAILED"
	ErrCodeSynthesisFailed  ErrorCode = "SYNTHESIS_FAILED"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Type     ErrorType   `json:"type"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewSystemError 创建系统错误
func NewSystemError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewIdentityMissingError 请求缺少用户ID与匿名令牌
func NewIdentityMissingError() *AppError {
	return &AppError{
		Code:     ErrCodeIdentityMissing,
		Message:  "either userId or clientToken is required",
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewConversationNotFoundError 会话不存在或不属于当前身份
func NewConversationNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodeConversationNotFound,
		Message:  "conversation not found",
		Type:     ErrorTypeBusiness,
		HTTPCode: http.StatusNotFound,
	}
}

// NewQuotaExceededError 每日配额已用尽
func NewQuotaExceededError(limit int) *AppError {
	return &AppError{
		Code:     ErrCodeLimitReached,
		Message:  "daily question limit reached",
		Type:     ErrorTypeBusiness,
		HTTPCode: http.StatusTooManyRequests,
		Details:  map[string]interface{}{"limit": limit},
	}
}

// NewGenerationError 模型生成失败
func NewGenerationError(cause error) *AppError {
	return &AppError{
		Code:     ErrCodeGenerationFailed,
		Message:  "answer generation failed",
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusInternalServerError,
		Cause:    cause,
	}
}

// NewDatabaseError 数据库操作失败
func NewDatabaseError(cause error) *AppError {
	return &AppError{
		Code:     ErrCodeDatabaseError,
		Message:  "database operation failed",
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
		Cause:    cause,
	}
}

// IsAppError 检查是否为AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取AppError，如果不是则包装为系统错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewSystemError(ErrCodeInternalServer, "Internal server error").WithCause(err)
}
