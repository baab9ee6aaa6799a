package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fawazzo/lezzet-kapim/checkout"
	"github.com/fawazzo/lezzet-kapim/clients"
	apperrors "github.com/fawazzo/lezzet-kapim/common/errors"
	"github.com/fawazzo/lezzet-kapim/common/logger"
	"github.com/fawazzo/lezzet-kapim/config"
	"github.com/fawazzo/lezzet-kapim/controllers"
	"github.com/fawazzo/lezzet-kapim/database"
	"github.com/fawazzo/lezzet-kapim/middleware"
	"github.com/fawazzo/lezzet-kapim/routes"
)

func main() {

	// Load environment configuration
	cfg := config.Load()

	// Initialize structured logging
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	// Initialize Redis-backed cart persistence
	redisClient := database.NewRedisClient(cfg.RedisURL)
	cartRepo := database.NewCartRepository(redisClient, cfg.CartTTL)

	// Marketplace gateway client
	marketplace := clients.NewMarketplaceClient(cfg.MarketplaceAPIURL, cfg.RequestTimeout)

	// Checkout flows on top of the cart store and the gateway
	flows := checkout.NewManager(marketplace, cartRepo, logger.Log)

	cartCtrl := controllers.NewCartController(cartRepo)
	checkoutCtrl := controllers.NewCheckoutController(flows, cartRepo)
	catalogCtrl := controllers.NewCatalogController(marketplace)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(apperrors.ErrorMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Cart-Session"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, cartCtrl, checkoutCtrl, catalogCtrl, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Storefront service is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server shutdown complete.")
}

func corsOrigins() []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		var origins []string
		for _, origin := range strings.Split(env, ",") {
			origins = append(origins, strings.TrimSpace(origin))
		}
		return origins
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
