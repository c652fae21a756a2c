package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/mo7ami/backend-go/app/bootstrap"
	"github.com/mo7ami/backend-go/app/router"
	"github.com/mo7ami/backend-go/internal/config"
	"github.com/mo7ami/backend-go/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init()

	web.BConfig.AppName = "Mo7ami Legal Assistant"
	web.BConfig.CopyRequestBody = true
	if port, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = port
	}

	logger.Info("🚀 Starting Mo7ami API", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
