package controllers

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/dig"

	"github.com/mo7ami/backend-go/internal/retrieval"
	"github.com/mo7ami/backend-go/internal/services"
	"github.com/mo7ami/backend-go/internal/voice"
)

// validate 请求体校验器，控制器共享
var validate = validator.New()

// Registry 控制器共享的服务集合。
// Beego每个请求通过反射重建控制器实例，服务从这里获取。
type Registry struct {
	Chat          *services.ChatService
	Quota         *services.QuotaService
	Conversations *services.ConversationService
	Analytics     *services.AnalyticsService
	Voice         *voice.Service
	Documents     *retrieval.DocumentRepo
}

var registry *Registry

// SetRegistry 设置全局服务注册表
func SetRegistry(r *Registry) {
	registry = r
}

// GetRegistry 获取全局服务注册表
func GetRegistry() *Registry {
	return registry
}

// InitRegistry 从依赖注入容器装配服务注册表
func InitRegistry(container *dig.Container) error {
	return container.Invoke(func(
		chat *services.ChatService,
		quota *services.QuotaService,
		conversations *services.ConversationService,
		analytics *services.AnalyticsService,
		voiceService *voice.Service,
		documents *retrieval.DocumentRepo,
	) {
		SetRegistry(&Registry{
			Chat:          chat,
			Quota:         quota,
			Conversations: conversations,
			Analytics:     analytics,
			Voice:         voiceService,
			Documents:     documents,
		})
	})
}
