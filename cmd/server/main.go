package main

import (
	"log"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/bountydotnew/bounty.new-sub002/internal/database"
	"github.com/bountydotnew/bounty.new-sub002/internal/effect"
	"github.com/bountydotnew/bounty.new-sub002/internal/handler"
	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/bountydotnew/bounty.new-sub002/internal/notify"
	"github.com/bountydotnew/bounty.new-sub002/internal/router"
	"github.com/bountydotnew/bounty.new-sub002/internal/scheduler"
	"github.com/bountydotnew/bounty.new-sub002/internal/tracker"
	"github.com/bountydotnew/bounty.new-sub002/internal/webhook"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 业务逻辑层
	fundingLogic := logic.NewFundingLogic(db)
	submissionLogic := logic.NewSubmissionLogic(db)
	cancellationLogic := logic.NewCancellationLogic(db)
	notificationLogic := logic.NewNotificationLogic(db)

	// 外部协作方客户端
	trackerClient := tracker.NewClient(cfg.Tracker)
	emailSender := notify.NewEmailSender(cfg.Notify)
	feedPoster := notify.NewFeedPoster(cfg.Notify)

	// 副作用编排器
	orchestrator, err := effect.NewOrchestrator(
		cfg.Payment.SiteBaseUrl,
		trackerClient, emailSender, feedPoster,
		fundingLogic, submissionLogic, cancellationLogic, notificationLogic,
	)
	if err != nil {
		log.Fatalf("Failed to initialize side effect orchestrator: %v", err)
	}
	defer orchestrator.Release()

	// 事件验签与路由
	verifier := webhook.NewVerifier(cfg.Payment.WebhookSecret)
	eventRouter := webhook.NewRouter()
	eventRouter.Register(webhook.NewCheckoutProcessor(fundingLogic, orchestrator))
	eventRouter.Register(webhook.NewPaymentIntentProcessor(fundingLogic, orchestrator))
	eventRouter.Register(webhook.NewRefundProcessor(fundingLogic, orchestrator))
	eventRouter.Register(webhook.NewTransferProcessor(fundingLogic))

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	webhookHandler := handler.NewWebhookHandler(verifier, eventRouter)
	r := router.Setup(cfg, webhookHandler)

	// 启动定时任务
	manager := scheduler.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
