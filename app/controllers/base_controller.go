package controllers

import (
	"net/http"
	"strings"

	"github.com/beego/beego/v2/server/web"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
)

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"message": message,
		},
	})
}

// ServeAppError maps a service error to its HTTP status and error envelope.
func (c *BaseController) ServeAppError(err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		c.JSONError(http.StatusInternalServerError, "internal server error")
		return
	}

	body := map[string]interface{}{
		"code":    string(appErr.Code),
		"message": appErr.Message,
	}
	if details, ok := appErr.Details.(map[string]interface{}); ok {
		for key, value := range details {
			body[key] = value
		}
	}
	c.JSON(appErr.HTTPCode, map[string]interface{}{
		"success": false,
		"error":   body,
	})
}

// identity extracts the caller identity from request headers.
// Authenticated callers send X-User-Id, anonymous callers X-Client-Token.
func (c *BaseController) identity() (userID, clientToken *string) {
	if header := strings.TrimSpace(c.Ctx.Input.Header("X-User-Id")); header != "" {
		userID = &header
	}
	if header := strings.TrimSpace(c.Ctx.Input.Header("X-Client-Token")); header != "" {
		clientToken = &header
	}
	return userID, clientToken
}

// getClientIP 获取客户端真实IP地址
func (c *BaseController) getClientIP() string {
	xForwardedFor := c.Ctx.Input.Header("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Ctx.Input.Header("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.Ctx.Input.IP()
}
