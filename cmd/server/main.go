package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v74"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "warranty_shop/docs"
	_ "warranty_shop/internal/domain/cart"
	_ "warranty_shop/internal/domain/checkout"
	_ "warranty_shop/internal/domain/customer"
	_ "warranty_shop/internal/domain/discount"
	_ "warranty_shop/internal/domain/plan"
	_ "warranty_shop/internal/domain/reconcile"
	_ "warranty_shop/internal/domain/tracking"
	_ "warranty_shop/internal/domain/vehicle"

	"warranty_shop/internal/pkg/config"
	"warranty_shop/internal/pkg/middleware"
	"warranty_shop/internal/pkg/registry"
	"warranty_shop/internal/pkg/worker"
	"warranty_shop/pkg/database"
	"warranty_shop/pkg/logger"
)

// @title Warranty Shop API
// @version 1.0
// @description Vehicle warranty storefront: quotes, carts, checkout and the back office.
// @BasePath /
func main() {
	config.LoadConfig()
	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	stripe.Key = config.GlobalConfig.Stripe.SecretKey

	db := database.InitDatabase()
	rdb := database.InitRedis()

	outbox := worker.NewOutbox(db, 4, 256)
	outbox.Start()

	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GlobalConfig.App.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if err := registry.InitModules(&registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: r,
		Outbox: outbox,
	}); err != nil {
		logger.Log.Fatal("Module initialization failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("port", config.GlobalConfig.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Forced shutdown", zap.Error(err))
	}
}
