package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"modern-pos-backend/internal/auth"
	"modern-pos-backend/internal/cache"
	"modern-pos-backend/internal/config"
	"modern-pos-backend/internal/database"
	"modern-pos-backend/internal/handlers"
	"modern-pos-backend/internal/logger"
	"modern-pos-backend/internal/middleware"
	"modern-pos-backend/internal/payment"
	"modern-pos-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zl.Sync()

	pools := database.NewPools(cfg, zl)
	defer pools.Close()

	productDB, err := pools.Product()
	if err != nil {
		zl.Fatal("product pool unavailable", zap.Error(err))
	}
	staffDB, err := pools.Staff()
	if err != nil {
		zl.Fatal("staff pool unavailable", zap.Error(err))
	}

	productCache := cache.NewFileCache(cfg.CachePath, zl)
	products := repository.NewProductRepository(productDB, productCache, zl)
	sales := repository.NewSaleRepository(productDB, zl)
	staff := repository.NewStaffRepository(staffDB, zl)
	terminal := payment.NewTerminalClient(
		cfg.TerminalHost, cfg.TerminalPort, cfg.TerminalTimeout,
		cfg.Currency, cfg.TerminalName, zl)
	tokens := auth.NewManager(cfg.JWTSecret)

	h := &handlers.Handlers{
		Products: products,
		Sales:    sales,
		Staff:    staff,
		Terminal: terminal,
		Tokens:   tokens,
		Log:      zl,
	}

	// Warm the cache once so the first scan after boot is fast, then
	// keep it fresh in the background. The repository single-flights
	// refreshes, so the ticker can never overlap a manual refresh.
	if _, err := products.PrimeCache(context.Background(), false); err != nil {
		zl.Warn("cache warm-up skipped", zap.Error(err))
	}
	stopRefresh := startCacheRefresh(products, cfg.RefreshInterval, zl)
	defer stopRefresh()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.WebOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(tokens))
	{
		api.GET("/products/scan/:barcode", h.ScanProduct)
		api.GET("/products/search", h.SearchProducts)
		api.POST("/checkout", h.Checkout)

		api.GET("/staff", h.ListActiveStaff)
		api.GET("/attendance/today/:staffID", h.GetTodayAttendance)
		api.POST("/attendance/clock-in", h.ClockIn)
		api.POST("/attendance/clock-out", h.ClockOut)

		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/cache/refresh", h.RefreshCache)
		}
	}

	zl.Info("server starting", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		zl.Fatal("server failed to start", zap.Error(err))
	}
}

// startCacheRefresh reloads the product cache on a fixed interval until
// the returned stop function is called.
func startCacheRefresh(products *repository.ProductRepository, interval time.Duration, zl *zap.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := products.RefreshCache(context.Background()); err != nil {
					zl.Warn("background cache refresh failed", zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
