package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/common/llmclient"
	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/common/otel"
	"github.com/basegraph/salesassist/core/config"
	"github.com/basegraph/salesassist/core/db"
	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/embed"
	"github.com/basegraph/salesassist/internal/enrich"
	"github.com/basegraph/salesassist/internal/http/handler"
	"github.com/basegraph/salesassist/internal/http/middleware"
	httprouter "github.com/basegraph/salesassist/internal/http/router"
	"github.com/basegraph/salesassist/internal/http/wsedge"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/orchestrator"
	"github.com/basegraph/salesassist/internal/queue"
	"github.com/basegraph/salesassist/internal/retriever"
	"github.com/basegraph/salesassist/internal/sessionmgr"
	"github.com/basegraph/salesassist/internal/store"
	"github.com/basegraph/salesassist/internal/vectorstore"
	"github.com/basegraph/salesassist/internal/worker"
)

const embeddingDimensions = 1536

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "salesassist starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)

	stores := store.NewStores(database.Queries())

	vectorStore := vectorstore.NewTypesenseStore(vectorstore.Config{
		Host:       cfg.Typesense.Host,
		Port:       cfg.Typesense.Port,
		Protocol:   cfg.Typesense.Protocol,
		APIKey:     cfg.Typesense.APIKey,
		Dimensions: embeddingDimensions,
	})
	if err := vectorStore.EnsureCollection(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to ensure typesense collection", "error", err)
		os.Exit(1)
	}

	fastProvider, err := newProvider(cfg.LLM.FastProvider, llmclient.Config{
		APIKey: cfg.LLM.FastAPIKey,
		Model:  cfg.LLM.FastModel,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct fast model provider", "error", err)
		os.Exit(1)
	}
	deepProvider, err := newProvider(cfg.LLM.DeepProvider, llmclient.Config{
		APIKey: cfg.LLM.DeepAPIKey,
		Model:  cfg.LLM.DeepModel,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct deep model provider", "error", err)
		os.Exit(1)
	}
	gateway := llmgw.New(fastProvider, deepProvider, llmgw.DefaultConfig())

	rawEmbedder, err := llmclient.NewOpenAIEmbedder(llmclient.Config{
		APIKey: cfg.LLM.FastAPIKey,
		Model:  cfg.LLM.EmbedModel,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct embedder", "error", err)
		os.Exit(1)
	}
	embedder := embed.NewCachedEmbedder(redisClient, rawEmbedder, 24*time.Hour)

	retrieve := retriever.New(embedder, vectorStore, retriever.Config{
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		TopK:                cfg.Retrieval.TopK,
		ContextCapBytes:     cfg.Retrieval.ContextCapBytes,
	})

	sessions := sessionmgr.New(stores.Sessions(), stores.ConversationLog())
	enricher := enrich.New(cfg.Enrichment)
	channels := channel.NewRegistry()

	producer := queue.NewRedisProducer(redisClient, cfg.Redis.Stream)
	defer producer.Close()

	orch, err := orchestrator.New(
		sessions,
		retrieve,
		gateway,
		enricher,
		stores.Analyses(),
		stores.Feedback(),
		channels,
		producer,
		orchestrator.Config{
			FastPathDeadline:     cfg.Deadlines.FastPath,
			SlowPathDeadline:     cfg.Deadlines.SlowPath,
			SlowPathStartupDelay: cfg.Deadlines.SlowPathStartup,
			SlowPathChannelWait:  cfg.Deadlines.SlowPathChannelWait,
			HistoryLimit:         20,
			RegionalPrices:       enrich.RegionalPriceTable{},
			Subsidies:            enrich.SubsidyTable{},
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct orchestrator", "error", err)
		os.Exit(1)
	}

	workers, reclaimer := startSlowPathWorkers(ctx, redisClient, cfg, orch)
	defer func() {
		for _, w := range workers {
			w.Stop()
		}
		reclaimer.Stop()
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sessionHandler := handler.NewSessionHandler(orch, sessions, stores.Analyses(), stores.Feedback())
	adminHandler := handler.NewAdminHandler(stores.Nuggets(), embedder, vectorStore, stores.Feedback(), stores.Analyses())
	wsHandler := wsedge.New(channels, cfg.Push.AllowedOrigins)

	router := setupRouter(cfg, sessionHandler, adminHandler, wsHandler)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      95 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// newProvider picks the concrete llmclient.Provider for a model role by
// its configured name. Both the Fast and Deep roles go through this so
// either can be assigned to either provider independently.
func newProvider(name string, cfg llmclient.Config) (llmclient.Provider, error) {
	switch name {
	case "anthropic":
		return llmclient.NewAnthropicProvider(cfg)
	case "openai", "":
		return llmclient.NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}

// startSlowPathWorkers spins up one RedisConsumer/Worker pair per
// configured concurrency slot plus one shared reclaimer. The stream's
// consumer-group width, not an in-memory semaphore, is what bounds how
// many deep analyses can run at once.
func startSlowPathWorkers(ctx context.Context, redisClient *redis.Client, cfg config.Config, orch *orchestrator.Orchestrator) ([]*worker.Worker, *worker.RedisReclaimer) {
	workers := make([]*worker.Worker, 0, cfg.Deadlines.SlowPathConcurrency)

	for i := 0; i < cfg.Deadlines.SlowPathConcurrency; i++ {
		consumerName := fmt.Sprintf("worker-%d", i)
		consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
			Stream:       cfg.Redis.Stream,
			Group:        cfg.Redis.ConsumerGroup,
			Consumer:     consumerName,
			DLQStream:    cfg.Redis.Stream + ":dlq",
			BatchSize:    1,
			Block:        5 * time.Second,
			MaxAttempts:  3,
			RequeueDelay: time.Second,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to construct slow path consumer", "error", err, "consumer", consumerName)
			os.Exit(1)
		}

		w := worker.New(consumerName, consumer, orch, worker.Config{MaxAttempts: 3})
		workers = append(workers, w)
		go func() {
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				slog.ErrorContext(ctx, "slow path worker stopped", "error", err, "consumer", consumerName)
			}
		}()
	}

	reclaimerConsumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:      cfg.Redis.Stream,
		Group:       cfg.Redis.ConsumerGroup,
		Consumer:    "reclaimer",
		DLQStream:   cfg.Redis.Stream + ":dlq",
		BatchSize:   1,
		MaxAttempts: 3,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct reclaimer consumer", "error", err)
		os.Exit(1)
	}

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Redis.Stream,
		Group:     cfg.Redis.ConsumerGroup,
		Consumer:  "reclaimer",
		MinIdle:   2 * cfg.Deadlines.SlowPath,
		Interval:  time.Minute,
		BatchSize: 10,
	}, reclaimerConsumer, func(ctx context.Context, msg queue.Message) error {
		if err := orch.RunSlowPath(ctx, msg.SessionID); err != nil {
			return err
		}
		return reclaimerConsumer.Ack(ctx, msg)
	})
	go reclaimer.Run(ctx)

	return workers, reclaimer
}

func setupRouter(cfg config.Config, sessions *handler.SessionHandler, admin *handler.AdminHandler, ws *wsedge.Handler) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, sessions, admin, ws, httprouter.Config{
		AdminSecret: cfg.Admin.Secret,
	})

	return router
}

const banner = `
███████╗ █████╗ ██╗     ███████╗███████╗ █████╗ ███████╗███████╗██╗███████╗████████╗
██╔════╝██╔══██╗██║     ██╔════╝██╔════╝██╔══██╗██╔════╝██╔════╝██║██╔════╝╚══██╔══╝
███████╗███████║██║     █████╗  ███████╗███████║███████╗███████╗██║███████╗   ██║
╚════██║██╔══██║██║     ██╔══╝  ╚════██║██╔══██║╚════██║╚════██║██║╚════██║   ██║
███████║██║  ██║███████╗███████╗███████║██║  ██║███████║███████║██║███████║   ██║
╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝╚══════╝   ╚═╝
`
