package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/adapters"
	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	analyzerDelivery "github.com/vasanthsarathy/process-mate/internal/delivery/analyzer"
	gameDelivery "github.com/vasanthsarathy/process-mate/internal/delivery/game"
	ownMiddleware "github.com/vasanthsarathy/process-mate/internal/middleware"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	analyzerUC "github.com/vasanthsarathy/process-mate/internal/usecase/analyzer"
)

type mainDeliveryHandler struct {
	analyzer *analyzerDelivery.AnalyzerHandler
	game     *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	if databaseAdapters.mongoAdapter != nil {
		defer databaseAdapters.mongoAdapter.Close(ctx)
	}
	if databaseAdapters.redisAdapter != nil {
		defer databaseAdapters.redisAdapter.Close(ctx)
	}

	engine := repository.NewEngineClient(cfg, logger)
	if err := engine.Start(); err != nil {
		logger.Warnf("Engine not available, verification disabled: %v", err)
	}
	defer engine.Stop()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, engine, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	port := ":" + cfg.ServerPort
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/analyze", h.analyzer.HandleAnalyze)
	r.Get("/analyze/updates", h.analyzer.HandleUpdates)
	r.Post("/engine/configure", h.analyzer.HandleConfigureEngine)
	r.Get("/health", h.analyzer.HandleHealth)
	r.Post("/games", h.game.HandleUpload)
	r.Get("/games/{id}", h.game.HandleGet)
	r.Post("/games/{id}/analyze", h.game.HandleAnalyzePly)
}

// initDatabaseAdapters brings up redis and mongo when they are configured.
// Both are optional; the analyzer degrades to in-process storage and
// uncached evaluation without them.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	result := &dataBaseAdapters{}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Warnf("MongoDB unavailable, storing games in memory: %v", err)
		} else {
			result.mongoAdapter = mongoAdapter
		}
	}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Warnf("Redis unavailable, evaluations will not be cached: %v", err)
		} else {
			result.redisAdapter = redisAdapter
		}
	}

	return result
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	engine *repository.EngineClient,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	cache := repository.NewEvalCache(databaseAdapters.redisAdapter, log)
	games := repository.NewGameRepository(databaseAdapters.mongoAdapter, log)
	service := analyzerUC.NewService(&cfg, log, engine, cache)

	return &mainDeliveryHandler{
		analyzer: analyzerDelivery.NewAnalyzerHandler(cfg, log, service, engine),
		game:     gameDelivery.NewGameHandler(cfg, log, games, service),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second)
}
