// Storefront 主程序
// 功能：商品目录、即时订单、预约、购物车与站内通知的单体服务
// 架构：DDD 分层 + gin HTTP + GORM + Redis + Kafka(Outbox)
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cartpersistence "github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence"
	carthttp "github.com/wyfcoding/storefront/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	catalogpersistence "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence"
	cataloghttp "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	notifdomain "github.com/wyfcoding/storefront/internal/notification/domain"
	notifpersistence "github.com/wyfcoding/storefront/internal/notification/infrastructure/persistence"
	notifhttp "github.com/wyfcoding/storefront/internal/notification/interfaces/http"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	orderpersistence "github.com/wyfcoding/storefront/internal/order/infrastructure/persistence"
	orderhttp "github.com/wyfcoding/storefront/internal/order/interfaces/http"
	"github.com/wyfcoding/storefront/internal/outbox"
	reservationapp "github.com/wyfcoding/storefront/internal/reservation/application"
	reservationdomain "github.com/wyfcoding/storefront/internal/reservation/domain"
	reservationpersistence "github.com/wyfcoding/storefront/internal/reservation/infrastructure/persistence"
	reservationhttp "github.com/wyfcoding/storefront/internal/reservation/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
)

func main() {
	// 1. 加载配置
	configPath := "configs/storefront/config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting Storefront",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&reservationdomain.Reservation{},
		&reservationdomain.ReservationItem{},
		&reservationdomain.Cart{},
		&reservationdomain.CartItem{},
		&notifdomain.Notification{},
		&outbox.Message{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 4. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化 Kafka 生产者与 Outbox 转发
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
	}
	defer producer.Close()

	outboxManager := outbox.NewManager(database.DB)
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go outboxManager.Relay(relayCtx, producer,
		time.Duration(cfg.Kafka.OutboxInterval)*time.Second, cfg.Kafka.OutboxBatchSize)

	// 6. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 7. 初始化仓储
	productRepo := catalogpersistence.NewProductRepository(database.DB)
	orderRepo := orderpersistence.NewOrderRepository(database.DB)
	reservationRepo := reservationpersistence.NewReservationRepository(database.DB)
	reservationCartRepo := reservationpersistence.NewCartRepository(database.DB)
	notificationRepo := notifpersistence.NewNotificationRepository(database.DB)
	sessionCartRepo := cartpersistence.NewCartRepository(redisCache,
		time.Duration(cfg.Store.CartTTLMinutes)*time.Minute)

	// 8. 初始化应用服务
	pricing, err := orderapp.NewPricing(cfg.Store)
	if err != nil {
		logger.Fatal(ctx, "Invalid store pricing config", "error", err)
	}

	notificationService := notifapp.NewService(notificationRepo, metricsInstance)
	catalogService := catalogapp.NewService(productRepo, outboxManager, cfg.Kafka.EventTopic)
	orderService := orderapp.NewService(orderRepo, productRepo, notificationService.Recorder,
		database, outboxManager, cfg.Kafka.EventTopic, pricing, metricsInstance)
	reservationService := reservationapp.NewService(reservationRepo, reservationCartRepo, productRepo,
		notificationService.Recorder, database, outboxManager, cfg.Kafka.EventTopic, metricsInstance)
	sessionCartService := cartapp.NewService(sessionCartRepo, productRepo)

	// 9. HTTP 服务器
	httpServer := createHTTPServer(cfg, redisCache,
		cataloghttp.NewHandler(catalogService),
		orderhttp.NewHandler(orderService, sessionCartService),
		reservationhttp.NewHandler(reservationService),
		carthttp.NewHandler(sessionCartService),
		notifhttp.NewHandler(notificationService),
	)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		logger.Info(ctx, "Starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 10. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down Storefront")
	stopRelay()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "Storefront stopped")
}

// createHTTPServer 创建 HTTP 服务器并注册全部模块路由
func createHTTPServer(
	cfg *config.Config,
	redisCache *cache.RedisCache,
	catalogHandler *cataloghttp.Handler,
	orderHandler *orderhttp.Handler,
	reservationHandler *reservationhttp.Handler,
	cartHandler *carthttp.Handler,
	notificationHandler *notifhttp.Handler,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(redisCache.GetClient(), cfg.RateLimit))
	router.Use(middleware.IdentityMiddleware())

	api := router.Group("/api/v1")
	catalogHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	reservationHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
