package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"florders/internal/clients"
	"florders/internal/config"
	"florders/internal/handlers"
	"florders/internal/middleware"
	"florders/internal/repository"
	"florders/internal/service"
	"florders/internal/storage"
	"florders/internal/worker"
	"florders/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== FL.ru Order Aggregator Starting ===")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Подключение к PostgreSQL
	db, err := database.Connect(database.Config{URL: cfg.DB.URL})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Автомиграция моделей
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Инициализация репозиториев
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Файловое хранилище вложений
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory:", err)
	}
	store := storage.NewFileStore(cfg.Upload.Dir, cfg.Upload.MaxUploadMB)

	// Внешние клиенты
	feedClient := clients.NewFeedClient()
	stagehandClient := clients.NewStagehandClient(cfg.Stagehand.URL, cfg.Stagehand.Timeout)

	// Инициализация сервисов
	orderService := service.NewOrderService(orderRepo)
	ingestService := service.NewIngestService(orderService, feedClient, service.RSSConfig{
		FeedURL:     cfg.RSS.FeedURL,
		Category:    cfg.RSS.Category,
		Subcategory: cfg.RSS.Subcategory,
	})
	uploadService := service.NewUploadService(orderService, store)
	userService := service.NewUserService(userRepo, store)
	feedbackService := service.NewFeedbackService(feedbackRepo, orderRepo, userRepo)
	exportService := service.NewExportService(orderRepo, cfg.Export.Dir)

	// Инициализация воркеров (фоновые задачи)
	scheduler := worker.NewScheduler()

	if cfg.Workers.RSSEnabled {
		scheduler.AddWorker(worker.NewRSSWorker(ingestService, cfg.Workers.RSSInterval))
		log.Printf("RSS Worker enabled (interval: %v)", cfg.Workers.RSSInterval)
	}

	go scheduler.Start()
	defer scheduler.Stop()

	// Инициализация Gin
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS: API обслуживает автоматизацию, источники не ограничиваем
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	// Rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Обработчики
	uploadHandler := handlers.NewUploadHandler(uploadService, store.MaxUploadMB())
	ordersHandler := handlers.NewOrdersHandler(orderService, exportService)
	usersHandler := handlers.NewUsersHandler(userService, store.MaxUploadMB())
	feedbacksHandler := handlers.NewFeedbacksHandler(feedbackService)
	ingestHandler := handlers.NewIngestHandler(ingestService)
	stagehandHandler := handlers.NewStagehandHandler(stagehandClient)

	api := r.Group("/api")

	// RSS-синхронизация
	api.POST("/rss/ingest", ingestHandler.TriggerIngest)

	// Загрузки от агента обогащения: свой лимитер на каждый IP
	uploadLimiter := middleware.NewIPRateLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	uploads := api.Group("", middleware.IPRateLimitMiddleware(uploadLimiter))
	uploads.POST("/upload", uploadHandler.HandleUpload)
	uploads.POST("/upload_file", uploadHandler.HandleUpload)

	// Заказы
	api.GET("/orders", ordersHandler.ListOrders)
	api.GET("/orders/export", ordersHandler.ExportOrders)
	api.GET("/orders/:external_id", ordersHandler.GetOrder)

	// Пользователи
	api.POST("/users", usersHandler.CreateUser)
	api.GET("/users/:uid", usersHandler.GetUser)
	api.PATCH("/users/:uid", usersHandler.UpdateUser)
	api.POST("/users/:uid/files", usersHandler.UploadFiles)

	// Отклики
	api.POST("/feedbacks", feedbacksHandler.CreateFeedback)
	api.GET("/feedbacks/order/:id", feedbacksHandler.ListByOrder)
	api.GET("/feedbacks/user/:uid", feedbacksHandler.ListByUser)
	api.PATCH("/feedbacks/:id/status", feedbacksHandler.UpdateStatus)
	api.DELETE("/feedbacks/:id", feedbacksHandler.DeleteFeedback)

	// Прокси разбора страниц
	api.POST("/parse-site", stagehandHandler.ParseSite)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.App.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
