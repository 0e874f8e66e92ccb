package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"todohub/internal/agent"
	"todohub/internal/ai"
	appsvc "todohub/internal/app"
	"todohub/internal/bootstrap"
	"todohub/internal/cache"
	"todohub/internal/platform/rabbitmq"
	"todohub/internal/ratelimit"
	"todohub/internal/repository"
	"todohub/internal/transport/http/handler"
	"todohub/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	resetRepo := repository.NewPasswordResetRepository(app.MySQL)
	taskRepo := repository.NewTaskRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	invocationRepo := repository.NewToolInvocationRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		resetRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		time.Duration(app.Config.Auth.ResetTokenMinute)*time.Minute,
	)
	taskService := appsvc.NewTaskService(taskRepo)

	registry := agent.NewRegistry(taskService, invocationRepo)
	chatAgent := agent.New(registry, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})

	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		invocationRepo,
		publisher,
		historyCache,
		chatAgent,
		app.Config.LLM.MaxContextMessage,
	)

	chatLimiter := ratelimit.NewLimiter(
		ratelimit.NewRedisCounter(app.Redis),
		app.Config.RateLimit.RequestsPerHour,
		time.Hour,
	)

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	chatHandler := handler.NewChatHandler(chatService)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.POST("/reset-password", authHandler.ResetPassword)
	authGroup.GET("/me", authJWT, authHandler.Me)

	taskGroup := v1.Group("/tasks")
	taskGroup.Use(authJWT)
	taskGroup.POST("", taskHandler.Create)
	taskGroup.POST("/batch", taskHandler.CreateBatch)
	taskGroup.GET("", taskHandler.List)
	taskGroup.GET("/:id", taskHandler.Get)
	taskGroup.PUT("/:id", taskHandler.Update)
	taskGroup.PATCH("/:id/complete", taskHandler.Complete)
	taskGroup.DELETE("/:id", taskHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(authJWT, middleware.RateLimit(chatLimiter))
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.POST("/messages", chatHandler.PostMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)
	chatGroup.GET("/invocations", chatHandler.ListInvocations)

	return router
}
