package response

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Response là envelope chung cho mọi API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody - phần error của envelope
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages,omitempty"`
}

// Default codes theo HTTP status, dùng khi caller không có code riêng
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnprocessable = "UNPROCESSABLE_ENTITY"
	CodeTooMany       = "TOO_MANY_REQUESTS"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
)

// ========================================
// SUCCESS
// ========================================

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, message string, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// ========================================
// ERROR
// ========================================

// Error trả về lỗi với code mặc định theo status; err (nếu có) đi vào details
func Error(c *gin.Context, statusCode int, message string, err error) {
	var details interface{}
	if err != nil {
		details = detailsOf(err)
	}
	ErrorWithCode(c, statusCode, codeFor(statusCode), message, details)
}

func ErrorWithCode(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// AbortWithError dùng trong middleware: ghi response rồi dừng chain
func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	ErrorWithCode(c, statusCode, code, message, nil)
	c.Abort()
}

// ozzo-validation Errors là map field -> error, marshal trực tiếp được
func detailsOf(err error) interface{} {
	var fieldErrs interface{ Filter() error }
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return err.Error()
}

func codeFor(statusCode int) string {
	switch statusCode {
	case 400:
		return CodeBadRequest
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeForbidden
	case 404:
		return CodeNotFound
	case 409:
		return CodeConflict
	case 422:
		return CodeUnprocessable
	case 429:
		return CodeTooMany
	default:
		return CodeInternal
	}
}
