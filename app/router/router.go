package router

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/mo7ami/backend-go/app/controllers"
	"github.com/mo7ami/backend-go/app/middleware"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	// 问答路由
	chatController := &controllers.ChatController{}
	web.Router("/api/chat", chatController, "post:Ask")
	// 注意：具体路由必须在参数路由之前
	web.Router("/api/chat/quota", chatController, "get:Quota")
	web.Router("/api/chat/history", chatController, "get:History")
	web.Router("/api/chat/history/:id", chatController, "get:GetConversation")

	// 语音路由
	voiceController := &controllers.VoiceController{}
	web.Router("/api/voice/transcribe", voiceController, "post:Transcribe")
	web.Router("/api/voice/synthesize", voiceController, "post:Synthesize")
	web.Router("/api/voice/synthesize/stream", voiceController, "post:SynthesizeStream")
	web.Router("/api/voice/voices", voiceController, "get:Voices")

	// 法律领域、文献与统计路由
	web.Router("/api/domains", &controllers.DomainController{}, "get:List")
	documentController := &controllers.DocumentController{}
	web.Router("/api/documents", documentController, "get:List")
	web.Router("/api/documents/:ref", documentController, "get:GetByRef")
	web.Router("/api/analytics/domains", &controllers.AnalyticsController{}, "get:TopDomains")
}
