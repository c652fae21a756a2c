package middleware

import (
	"net/http"

	"github.com/beego/beego/v2/server/web/context"
)

// allowedOrigins 前端允许的源列表
var allowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"https://mo7ami.ma",
	"https://www.mo7ami.ma",
}

// CORSMiddleware CORS中间件
func CORSMiddleware(ctx *context.Context) {
	origin := ctx.Input.Header("Origin")

	if origin != "" {
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				ctx.Output.Header("Access-Control-Allow-Origin", origin)
				ctx.Output.Header("Access-Control-Allow-Credentials", "true")
				break
			}
		}
	}

	ctx.Output.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Output.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, X-Client-Token, Accept, Origin")
	ctx.Output.Header("Access-Control-Max-Age", "3600")

	// 处理OPTIONS预检请求
	if ctx.Input.Method() == http.MethodOptions {
		ctx.Output.SetStatus(http.StatusNoContent)
		ctx.ResponseWriter.WriteHeader(http.StatusNoContent)
	}
}
