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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/config"
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/handler"
	"github.com/yourusername/coffee-audit-api/internal/middleware"
	pgRepo "github.com/yourusername/coffee-audit-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/coffee-audit-api/internal/repository/redis"
	"github.com/yourusername/coffee-audit-api/internal/service"
	"github.com/yourusername/coffee-audit-api/internal/storage"
	ws "github.com/yourusername/coffee-audit-api/internal/websocket"
	"github.com/yourusername/coffee-audit-api/pkg/auth"
	"github.com/yourusername/coffee-audit-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, os.Getenv("MIGRATIONS_DIR")); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Создаем контекст с отменой для корректного завершения фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis опционален: без него KPI не кешируется, лимиты не действуют, лента WS работает в одном экземпляре
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v. Продолжаем без Redis.", err)
		redisClient = nil
	}

	var cacheRepo repository.CacheRepository
	var pubSubProvider ws.PubSubProvider
	if redisClient != nil {
		log.Println("Successfully connected to Redis")
		cache, err := redisRepo.NewCacheRepo(redisClient, cfg.Redis.KeyPrefix)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = cache

		redisProvider, err := ws.NewRedisPubSub(redisClient)
		if err != nil {
			log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Лента WS будет локальной.", err)
		} else {
			pubSubProvider = redisProvider
		}
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	coffeeRepo := pgRepo.NewCoffeeRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	auditRepo := pgRepo.NewAuditRepo(db)
	kpiRepo := pgRepo.NewKPIRepo(db)

	imageStore, err := storage.NewFSImageStore(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix, int(cfg.Storage.MaxImageBytes))
	if err != nil {
		log.Printf("Failed to initialize image store: %v", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.WSTicketExpirySec)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// --- Инициализация WebSocket ---
	wsHub := ws.NewHub()
	wsManager := ws.NewManager(wsHub, pubSubProvider, cfg.Redis.KeyPrefix+"audit-events")
	go func() {
		if err := wsManager.Run(ctx); err != nil {
			log.Printf("Ошибка подписки ленты аудитов на кластер: %v", err)
		}
	}()

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo, coffeeRepo)
	coffeeService := service.NewCoffeeService(coffeeRepo)
	catalogService := service.NewCatalogService(categoryRepo, questionRepo)
	kpiService := service.NewKPIService(kpiRepo, cacheRepo, cfg.KPI.CacheTTL, cfg.KPI.ComplianceThreshold)
	auditService := service.NewAuditService(auditRepo, imageStore, kpiService, wsManager)

	if cfg.Seed.Enabled {
		seeder := service.NewSeedService(userRepo, coffeeRepo, categoryRepo, questionRepo)
		if err := seeder.Seed(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			log.Printf("Failed to seed database: %v", err)
			os.Exit(1)
		}
	}

	// Рассылка отчетов
	if cfg.Reports.Enabled {
		var emailService service.EmailService = &service.NoopEmailService{}
		if cfg.Email.ResendAPIKey != "" {
			resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
			if err != nil {
				log.Printf("Failed to initialize email service: %v", err)
				os.Exit(1)
			}
			emailService = resendService
		} else {
			log.Println("Resend API key не задан: отчеты будут только логироваться")
		}
		reportService := service.NewReportService(kpiService, kpiRepo, userRepo, emailService)
		scheduler := service.NewReportScheduler(reportService, cfg.Reports.SendHour, cfg.Reports.CheckInterval, cfg.Reports.Location())
		go scheduler.Run(ctx)
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	coffeeHandler := handler.NewCoffeeHandler(coffeeService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	auditHandler := handler.NewAuditHandler(auditService)
	kpiHandler := handler.NewKPIHandler(kpiService)
	wsHandler := handler.NewWSHandler(wsManager, jwtService, authService, cfg.Server.CORSOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, authService)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	writeLimit := rateLimiter.Limit(middleware.WriteRateLimitConfig())

	// Инициализируем роутер Gin
	router := gin.Default()

	// В production не доверяем прокси-заголовкам, в development доверяем localhost
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настройка CORS
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	// Загруженные фотографии аудитов
	router.Static(cfg.Storage.PublicPrefix, cfg.Storage.UploadDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", rateLimiter.Limit(middleware.LoginRateLimitConfig()), authHandler.Login)
			authGroup.POST("/ws-ticket", authMiddleware.RequireAuth(), authHandler.WSTicket)
		}

		authed := api.Group("")
		authed.Use(authMiddleware.RequireAuth())

		// Пользователи
		users := authed.Group("/users")
		{
			users.GET("/me", authHandler.Me)

			adminUsers := users.Group("")
			adminUsers.Use(authMiddleware.AdminOnly())
			{
				adminUsers.GET("", userHandler.ListUsers)
				adminUsers.POST("", writeLimit, userHandler.CreateUser)

				userWithID := adminUsers.Group("/:id")
				userWithID.Use(middleware.ExtractUintParam("id", "userID"))
				{
					userWithID.GET("", userHandler.GetUser)
					userWithID.PUT("", writeLimit, userHandler.UpdateUser)
					userWithID.DELETE("", writeLimit, userHandler.DeleteUser)
				}
			}
		}

		// Кофейни: читают все, изменяет администратор
		coffees := authed.Group("/coffees")
		{
			coffees.GET("", coffeeHandler.ListCoffees)
			coffees.GET("/:id", middleware.ExtractUintParam("id", "coffeeID"), coffeeHandler.GetCoffee)

			adminCoffees := coffees.Group("")
			adminCoffees.Use(authMiddleware.AdminOnly(), writeLimit)
			{
				adminCoffees.POST("", coffeeHandler.CreateCoffee)
				adminCoffees.PUT("/:id", middleware.ExtractUintParam("id", "coffeeID"), coffeeHandler.UpdateCoffee)
				adminCoffees.DELETE("/:id", middleware.ExtractUintParam("id", "coffeeID"), coffeeHandler.DeleteCoffee)
			}
		}

		// Каталог вопросов
		categories := authed.Group("/categories")
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.GET("/:id", middleware.ExtractUintParam("id", "categoryID"), catalogHandler.GetCategory)

			adminCategories := categories.Group("")
			adminCategories.Use(authMiddleware.AdminOnly(), writeLimit)
			{
				adminCategories.POST("", catalogHandler.CreateCategory)
				adminCategories.PUT("/:id", middleware.ExtractUintParam("id", "categoryID"), catalogHandler.UpdateCategory)
				adminCategories.DELETE("/:id", middleware.ExtractUintParam("id", "categoryID"), catalogHandler.DeleteCategory)
			}
		}

		questions := authed.Group("/questions")
		{
			questions.GET("", catalogHandler.ListQuestions)
			questions.GET("/:id", middleware.ExtractUintParam("id", "questionID"), catalogHandler.GetQuestion)

			adminQuestions := questions.Group("")
			adminQuestions.Use(authMiddleware.AdminOnly(), writeLimit)
			{
				adminQuestions.POST("", catalogHandler.CreateQuestion)
				adminQuestions.PUT("/:id", middleware.ExtractUintParam("id", "questionID"), catalogHandler.UpdateQuestion)
				adminQuestions.DELETE("/:id", middleware.ExtractUintParam("id", "questionID"), catalogHandler.DeleteQuestion)
			}
		}

		// Аудиты: права на уровне записи проверяет AuditService
		audits := authed.Group("/audits")
		{
			audits.GET("", auditHandler.ListAudits)
			audits.GET("/export", auditHandler.ExportAudits)
			audits.POST("", authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleAuditor), writeLimit, auditHandler.CreateAudit)

			auditWithID := audits.Group("/:id")
			auditWithID.Use(middleware.ExtractUintParam("id", "auditID"))
			{
				auditWithID.GET("", auditHandler.GetAudit)
				auditWithID.PUT("", writeLimit, auditHandler.UpdateAudit)
				auditWithID.DELETE("", writeLimit, auditHandler.DeleteAudit)
			}
		}

		authed.GET("/kpi", kpiHandler.GetKPI)
	}

	// WebSocket маршрут (аутентификация по тикету из /api/auth/ws-ticket)
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем планировщик отчетов и подписку ленты
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	wsHub.Close()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	log.Println("Server exited properly")
}
