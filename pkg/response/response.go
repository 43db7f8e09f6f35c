// Package response 提供统一的 HTTP 响应格式
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/pkg/errs"
)

// Body 统一响应体
type Body struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: "OK", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: "OK", Data: data})
}

// Error 根据业务错误码返回对应的 HTTP 状态
func Error(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), Body{
		Code:    string(errs.CodeOf(err)),
		Message: err.Error(),
	})
}

// ErrorWithStatus 指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Code: "ERROR", Message: message})
}
