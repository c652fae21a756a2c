package controllers

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mo7ami/backend-go/internal/database"
	"github.com/mo7ami/backend-go/internal/services"
)

// RootController 根控制器
type RootController struct {
	BaseController
}

func (c *RootController) Index() {
	c.JSONSuccess(map[string]string{
		"name":    "Mo7ami Legal Assistant API",
		"message": "مرحبا بكم في محامي",
	})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
}

func (c *HealthController) Health() {
	components := map[string]string{"database": "up", "redis": "up"}
	healthy := true

	if database.DB == nil {
		components["database"] = "down"
		healthy = false
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		components["database"] = "down"
		healthy = false
	}

	if database.RedisClient == nil {
		components["redis"] = "disabled"
	} else if err := database.RedisClient.Ping(c.Ctx.Request.Context()).Err(); err != nil {
		components["redis"] = "down"
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, map[string]interface{}{
		"status":     status,
		"components": components,
	})
}

// DomainController 法律领域控制器
type DomainController struct {
	BaseController
}

// GET /api/domains
func (c *DomainController) List() {
	c.JSONSuccess(map[string]interface{}{
		"domains": services.ListLegalDomains(),
	})
}

// AnalyticsController 查询统计控制器
type AnalyticsController struct {
	BaseController
	analyticsService *services.AnalyticsService
}

func (c *AnalyticsController) Prepare() {
	if r := GetRegistry(); r != nil {
		c.analyticsService = r.Analytics
	}
}

// GET /api/analytics/domains
func (c *AnalyticsController) TopDomains() {
	limit, _ := strconv.Atoi(c.GetString("limit", "10"))

	stats, err := c.analyticsService.TopDomains(c.Ctx.Request.Context(), limit)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to load domain statistics")
		return
	}

	c.JSONSuccess(map[string]interface{}{"domains": stats})
}

// MetricsController Prometheus指标控制器
type MetricsController struct {
	BaseController
}

// Metrics 返回Prometheus格式的指标
func (c *MetricsController) Metrics() {
	promhttp.Handler().ServeHTTP(c.Ctx.ResponseWriter, c.Ctx.Request)
}
