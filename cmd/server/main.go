package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"studyaid/internal/auth"
	"studyaid/internal/config"
	"studyaid/internal/handler"
	"studyaid/internal/httputil"
	"studyaid/internal/llm"
	"studyaid/internal/middleware"
	"studyaid/internal/repository/postgres"
	"studyaid/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	cardRepo := postgres.NewFlashcardRepository(repoConfig)
	examRepo := postgres.NewExamRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	completer := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, logger)
	hierarchySvc := service.NewHierarchyService(folderRepo, cardRepo, txManager, logger)
	generationSvc := service.NewGenerationService(
		completer, cardRepo, folderRepo, examRepo, txManager, cfg.MaxTokens, logger,
	)

	// Create handlers
	folderHandler := handler.NewFolderHandler(hierarchySvc, logger)
	cardHandler := handler.NewFlashcardHandler(hierarchySvc, logger)
	treeHandler := handler.NewTreeHandler(hierarchySvc, logger)
	generationHandler := handler.NewGenerationHandler(generationSvc, logger)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Flashcard routes
	mux.HandleFunc("POST /api/flashcards", cardHandler.CreateFlashcard)
	mux.HandleFunc("PATCH /api/flashcards/{id}", cardHandler.UpdateFlashcard)
	mux.HandleFunc("DELETE /api/flashcards/{id}", cardHandler.DeleteFlashcard)

	// Tree routes
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/tree/collect", treeHandler.CollectFlashcards)
	mux.HandleFunc("POST /api/tree/move", treeHandler.MoveItem)
	mux.HandleFunc("POST /api/tree/move/bulk", treeHandler.MoveItemsBulk)
	mux.HandleFunc("POST /api/tree/delete/bulk", treeHandler.DeleteItemsBulk)

	// Generation and exam routes
	mux.HandleFunc("POST /api/generate/flashcards", generationHandler.GenerateFlashcards)
	mux.HandleFunc("POST /api/generate/exam", generationHandler.GenerateExam)
	mux.HandleFunc("GET /api/exams", generationHandler.ListExams)
	mux.HandleFunc("GET /api/exams/{id}", generationHandler.GetExam)
	mux.HandleFunc("DELETE /api/exams/{id}", generationHandler.DeleteExam)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	h = middleware.Auth(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation requests wait on the model
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
