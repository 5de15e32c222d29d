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

	"betting-market/internal/auth"
	"betting-market/internal/blockchain"
	"betting-market/internal/config"
	"betting-market/internal/database"
	"betting-market/internal/handlers"
	"betting-market/internal/oracle"
	"betting-market/internal/repository"
	"betting-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Oracle feed registry: CoinGecko polling by default, Binance streams
	// for any symbols configured in the environment
	feedCtx, cancelFeeds := context.WithCancel(context.Background())
	defer cancelFeeds()

	registry := oracle.NewRegistry()
	coingecko := oracle.NewCoinGeckoFeed(map[string]string{
		"SOL/USD": "solana",
		"BTC/USD": "bitcoin",
		"ETH/USD": "ethereum",
	})
	for _, handle := range []string{"SOL/USD", "BTC/USD", "ETH/USD"} {
		registry.Register(handle, coingecko)
	}
	for _, mapping := range strings.Split(cfg.Oracle.BinanceSymbols, ",") {
		parts := strings.SplitN(mapping, "=", 2)
		if len(parts) != 2 {
			continue
		}
		feed := oracle.NewBinanceFeed(parts[0], parts[1])
		registry.Register(parts[0], feed)
		go func() {
			if err := feed.Run(feedCtx); err != nil && feedCtx.Err() == nil {
				log.Printf("Binance feed stopped: %v", err)
			}
		}()
	}

	// Escrow vault over Solana
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.VaultWalletPrivateKey,
	)
	vault := blockchain.NewEscrowVault(solanaClient)

	// Repository, per-market locks and services
	repo := repository.NewRepository(database.GetDB())
	locks := services.NewMarketLocks()

	marketService := services.NewMarketService(repo, registry, locks, cfg.App.AdminWallet)
	betService := services.NewBetService(repo, vault, locks)
	payoutService := services.NewPayoutService(repo, vault, locks)

	// Handlers
	authHandler := handlers.NewAuthHandler()
	marketHandler := handlers.NewMarketHandler(marketService)
	betHandler := handlers.NewBetHandler(betService, payoutService)

	// Set up Gin router
	router := gin.Default()

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	router.POST("/api/auth/token", authHandler.IssueToken)

	// Public market routes
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Market lifecycle (admin only, enforced in the service)
		api.POST("/markets", marketHandler.CreateMarket)
		api.POST("/markets/:id/close", marketHandler.CloseMarket)
		api.POST("/markets/:id/settle", marketHandler.SettleMarket)
		api.POST("/markets/:id/confirm", marketHandler.ConfirmWinner)

		// Betting
		api.POST("/markets/:id/bets", betHandler.PlaceBet)
		api.POST("/markets/:id/claim", betHandler.Claim)
		api.GET("/markets/:id/position", betHandler.GetPosition)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelFeeds()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
