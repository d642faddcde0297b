package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/blockchain"
	"freelance-escrow/internal/config"
	"freelance-escrow/internal/database"
	"freelance-escrow/internal/handlers"
	"freelance-escrow/internal/jobs"
	"freelance-escrow/internal/services"
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

	db := database.GetDB()

	// Initialize Solana custody client
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.ServerWalletPrivateKey,
	)
	escrowWallet := blockchain.NewEscrowWallet(solanaClient)

	if solanaClient.HasWallet() {
		balance, err := solanaClient.GetSOLBalance(context.Background(), solanaClient.WalletAddress())
		if err != nil {
			log.Printf("Warning: failed to read custody wallet balance: %v", err)
		} else {
			log.Printf("Custody wallet balance: %s SOL", balance.String())
		}
	}

	// Initialize services
	authService := services.NewAuthService(db)
	platformService := services.NewPlatformService(db)
	payoutService := services.NewPayoutService(escrowWallet, cfg.Platform.OwnerAddress)
	escrowService := services.NewEscrowService(db, payoutService)
	disputeService := services.NewDisputeService(db, payoutService)
	reviewService := services.NewReviewService(db)
	queryService := services.NewQueryService(db)

	// Create the platform config row and seed the id allocator on first boot
	if err := platformService.EnsureInstantiated(
		context.Background(),
		cfg.Platform.OwnerAddress,
		cfg.Platform.FeeBps,
	); err != nil {
		log.Fatalf("Failed to instantiate platform: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(escrowService, queryService)
	proposalHandler := handlers.NewProposalHandler(escrowService, queryService)
	milestoneHandler := handlers.NewMilestoneHandler(escrowService, queryService)
	disputeHandler := handlers.NewDisputeHandler(disputeService, queryService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	platformHandler := handlers.NewPlatformHandler(platformService)

	// Start payout retry job
	payoutRetrier := jobs.NewPayoutRetrier(db, payoutService, 5*time.Minute)
	go payoutRetrier.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
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
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public read routes
	router.GET("/api/config", platformHandler.GetConfig)
	router.GET("/api/projects", projectHandler.ListProjects)
	router.GET("/api/projects/:id", projectHandler.GetProject)
	router.GET("/api/projects/:id/proposals", proposalHandler.ProjectProposals)
	router.GET("/api/projects/:id/milestones", milestoneHandler.ProjectMilestones)
	router.GET("/api/projects/:id/dispute", disputeHandler.GetDispute)
	router.GET("/api/projects/:id/transactions", projectHandler.ProjectTransactions)
	router.GET("/api/proposals/:id", proposalHandler.GetProposal)
	router.GET("/api/milestones/:id", milestoneHandler.GetMilestone)
	router.GET("/api/users/:address/projects", projectHandler.UserProjects)
	router.GET("/api/users/:address/rating", reviewHandler.UserRating)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Project lifecycle
		api.POST("/projects", projectHandler.CreateProject)
		api.POST("/projects/:id/cancel", projectHandler.CancelProject)

		// Proposals
		api.POST("/projects/:id/proposals", proposalHandler.SubmitProposal)
		api.POST("/projects/:id/proposals/:proposalId/accept", proposalHandler.AcceptProposal)

		// Milestones
		api.POST("/projects/:id/milestones", milestoneHandler.CreateMilestone)
		api.POST("/projects/:id/milestones/:milestoneId/submit", milestoneHandler.SubmitMilestone)
		api.POST("/projects/:id/milestones/:milestoneId/approve", milestoneHandler.ApproveMilestone)
		api.POST("/projects/:id/milestones/:milestoneId/reject", milestoneHandler.RejectMilestone)

		// Disputes
		api.POST("/projects/:id/dispute", disputeHandler.CreateDispute)
		api.POST("/projects/:id/dispute/votes", disputeHandler.VoteOnDispute)

		// Reviews
		api.POST("/projects/:id/reviews", reviewHandler.SubmitReview)

		// Platform administration (owner enforced in the service)
		api.PUT("/admin/fee", platformHandler.UpdateFee)
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
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	payoutRetrier.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
