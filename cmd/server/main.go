package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"studioflow/internal/auth"
	"studioflow/internal/config"
	"studioflow/internal/domain/repositories"
	"studioflow/internal/handler"
	"studioflow/internal/handler/sse"
	"studioflow/internal/middleware"
	"studioflow/internal/repository/postgres"
	"studioflow/internal/repository/sqlite"
	"studioflow/internal/service"
	serviceAuth "studioflow/internal/service/auth"
	serviceContract "studioflow/internal/service/contract"
	"studioflow/internal/service/guided"
	serviceLLM "studioflow/internal/service/llm"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// DEBUG defaults on outside prod
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	signerTokens, err := auth.NewSignerTokens(cfg.SigningTokenSecret, cfg.SignerLinkTTL)
	if err != nil {
		log.Fatalf("Failed to configure signing links: %v", err)
	}

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL, cfg.DBMaxConns, logger)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected", "contracts_table", tables.Contracts)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	contractRepo := postgres.NewContractRepository(repoConfig)
	clientRepo := postgres.NewClientRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	work := postgres.NewUnitOfWork(pool, logger)

	// Device-local signature cache
	var signatureCaches repositories.SignatureCacheProvider
	if cfg.SignatureCachePath != "" {
		cache, err := sqlite.OpenSignatureCache(cfg.SignatureCachePath)
		if err != nil {
			log.Fatalf("Failed to open signature cache: %v", err)
		}
		defer cache.Close()
		signatureCaches = cache
		logger.Info("signature cache opened", "path", cfg.SignatureCachePath)
	} else {
		signatureCaches = serviceContract.NewMemorySignatureCaches()
	}

	// Contract services share one store and one clock
	deps := serviceContract.Dependencies{
		Contracts:     contractRepo,
		Clients:       clientRepo,
		Notifications: notificationRepo,
		Work:          work,
		Logger:        logger,
	}
	contractService := serviceContract.NewContractService(deps)
	versionService := serviceContract.NewVersionService(deps)
	signingService := serviceContract.NewSigningService(deps, signatureCaches)
	linkAuthorizer := serviceAuth.NewLinkAuthorizer(contractRepo)

	// Clients and notifications
	clientService := service.NewClientService(clientRepo, cfg.StaleClientThreshold, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	// AI suggestions degrade to empty results when no provider is configured
	suggester := serviceLLM.SetupSuggester(cfg, logger)

	// Guided builder
	catalog, err := guided.LoadCatalog(guided.DefaultCatalog)
	if err != nil {
		log.Fatalf("Failed to load guided catalog: %v", err)
	}
	guidedService := guided.NewService(catalog, contractService, suggester, logger)
	go pruneGuidedSessions(ctx, guidedService, logger)

	logger.Info("services initialized")

	// Handlers
	contractHandler := handler.NewContractHandler(contractService, versionService, logger)
	streamHandler := handler.NewContractStreamHandler(contractService, sse.DefaultConfig(), logger)
	signingHandler := handler.NewSigningHandler(contractService, signingService, linkAuthorizer, signerTokens, cfg.PublicAppURL, logger)
	guidedHandler := handler.NewGuidedHandler(guidedService, logger)
	clientHandler := handler.NewClientHandler(clientService, notificationService, logger)
	aiHandler := handler.NewAIHandler(suggester, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Contract routes
	mux.HandleFunc("GET /api/contracts", contractHandler.ListContracts)
	mux.HandleFunc("POST /api/contracts", contractHandler.CreateContract)
	mux.HandleFunc("GET /api/contracts/stream", streamHandler.StreamContracts) // literal segment outranks {id}
	mux.HandleFunc("GET /api/contracts/{id}", contractHandler.GetContract)
	mux.HandleFunc("GET /api/contracts/{id}/render", contractHandler.RenderContract)
	mux.HandleFunc("PUT /api/contracts/{id}/variables", contractHandler.UpdateVariables)
	mux.HandleFunc("POST /api/contracts/{id}/prepare", contractHandler.PrepareFields)
	mux.HandleFunc("POST /api/contracts/{id}/archive", contractHandler.Archive)
	mux.HandleFunc("POST /api/contracts/{id}/unarchive", contractHandler.Unarchive)
	mux.HandleFunc("POST /api/contracts/{id}/expire", contractHandler.Expire)
	mux.HandleFunc("POST /api/contracts/{id}/duplicate", contractHandler.Duplicate)

	// Version routes
	mux.HandleFunc("GET /api/contracts/{id}/versions", contractHandler.ListVersions)
	mux.HandleFunc("GET /api/contracts/{id}/versions/compare", contractHandler.CompareVersions)
	mux.HandleFunc("POST /api/contracts/{id}/versions/{version}/restore", contractHandler.RestoreVersion)

	// Provider signing session and signing links
	mux.HandleFunc("POST /api/contracts/{id}/links", signingHandler.IssueLink)
	mux.HandleFunc("POST /api/contracts/{id}/signing", signingHandler.StartProviderSession)
	mux.HandleFunc("GET /api/contracts/{id}/signing", signingHandler.GetProviderSession)
	mux.HandleFunc("DELETE /api/contracts/{id}/signing", signingHandler.CancelProviderSession)
	mux.HandleFunc("POST /api/contracts/{id}/signing/fields/{fieldId}/open", signingHandler.OpenProviderField)
	mux.HandleFunc("PUT /api/contracts/{id}/signing/fields/{fieldId}", signingHandler.SetProviderField)
	mux.HandleFunc("POST /api/contracts/{id}/signing/finish", signingHandler.FinishProviderSession)

	// Signer routes (signing-link token)
	mux.HandleFunc("GET /api/sign/contracts/{id}", signingHandler.OpenContract)
	mux.HandleFunc("POST /api/sign/contracts/{id}/session", signingHandler.StartSignerSession)
	mux.HandleFunc("GET /api/sign/contracts/{id}/session", signingHandler.GetSignerSession)
	mux.HandleFunc("DELETE /api/sign/contracts/{id}/session", signingHandler.CancelSignerSession)
	mux.HandleFunc("POST /api/sign/contracts/{id}/session/fields/{fieldId}/open", signingHandler.OpenSignerField)
	mux.HandleFunc("PUT /api/sign/contracts/{id}/session/fields/{fieldId}", signingHandler.SetSignerField)
	mux.HandleFunc("POST /api/sign/contracts/{id}/session/finish", signingHandler.FinishSignerSession)
	mux.HandleFunc("POST /api/sign/contracts/{id}/request-changes", signingHandler.RequestChanges)
	mux.HandleFunc("POST /api/sign/contracts/{id}/decline", signingHandler.Decline)

	// Guided builder routes
	mux.HandleFunc("POST /api/guided", guidedHandler.StartSession)
	mux.HandleFunc("GET /api/guided/{id}", guidedHandler.GetSession)
	mux.HandleFunc("DELETE /api/guided/{id}", guidedHandler.Abandon)
	mux.HandleFunc("POST /api/guided/{id}/answers", guidedHandler.Submit)
	mux.HandleFunc("POST /api/guided/{id}/undo", guidedHandler.Undo)
	mux.HandleFunc("POST /api/guided/{id}/redo", guidedHandler.Redo)
	mux.HandleFunc("GET /api/guided/{id}/suggestions", guidedHandler.SuggestAnswers)
	mux.HandleFunc("POST /api/guided/{id}/complete", guidedHandler.Complete)

	// Client and notification routes
	mux.HandleFunc("GET /api/clients", clientHandler.ListClients)
	mux.HandleFunc("POST /api/clients", clientHandler.CreateClient)
	mux.HandleFunc("GET /api/clients/{id}", clientHandler.GetClient)
	mux.HandleFunc("PATCH /api/clients/{id}", clientHandler.UpdateClient)
	mux.HandleFunc("POST /api/clients/{id}/contact", clientHandler.RecordContact)
	mux.HandleFunc("GET /api/notifications", clientHandler.ListNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", clientHandler.MarkNotificationRead)

	// AI routes
	mux.HandleFunc("POST /api/ai/clauses", aiHandler.SuggestClause)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, signerTokens, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID", "X-Device-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// pruneGuidedSessions drops abandoned guided builds until ctx ends
func pruneGuidedSessions(ctx context.Context, svc *guided.Service, logger *slog.Logger) {
	ticker := time.NewTicker(config.GuidedSessionIdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.PruneIdle(config.GuidedSessionIdleTimeout); n > 0 {
				logger.Info("pruned idle guided builds", "count", n)
			}
		}
	}
}
