package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow/internal/config"
	"taskflow/internal/database"
	"taskflow/internal/events"
	"taskflow/internal/handlers"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
	"taskflow/internal/repository"
	"taskflow/internal/services"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.GinMode != "release"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Event publishing is optional: without a broker URL the services simply
	// skip it.
	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to AMQP broker", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("task event publishing enabled")
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskService := services.NewTaskService(taskRepo, userRepo, publisher)
	userService := services.NewUserService(userRepo)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(authService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/search", taskHandler.SearchTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth(authService))
		{
			users.GET("", userHandler.ListUsers)
			users.PUT("/me", userHandler.UpdateProfile)
			users.DELETE("/me", userHandler.DeleteAccount)
		}
	}

	logger.Info("server starting", zap.String("addr", cfg.AppPort))
	if err := r.Run(cfg.AppPort); err != nil {
		logger.Logger.Fatal("Failed to start server", zap.Error(err))
	}
}
