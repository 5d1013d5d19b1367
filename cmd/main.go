package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"kifu_editor/internal/adapters"
	"kifu_editor/internal/bootstrap"
	editorDelivery "kifu_editor/internal/delivery/editor"
	recordDelivery "kifu_editor/internal/delivery/record"
	ownMiddleware "kifu_editor/internal/middleware"
	repo "kifu_editor/internal/repository"
	"kifu_editor/internal/usecase/editor"
	recorduc "kifu_editor/internal/usecase/record"
)

type mainDeliveryHandler struct {
	record *recordDelivery.RecordHandler
	editor *editorDelivery.EditorHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		panic("failed to setup configuration: " + err.Error())
	}
	logger := NewLogger(cfg.Debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	grpcServer, healthServer := newHealthServer()
	go watchAdapters(ctx, logger, healthServer, databaseAdapters)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
		if err != nil {
			logger.Fatal("Failed to listen grpc port", zap.Error(err))
		}
		logger.Infof("Health service is running on port %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(ctx, *cfg, logger, databaseAdapters)
	handlers.Router(r, logger, cfg.IsLocalCors)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger(debug bool) *zap.SugaredLogger {
	newLogger := zap.NewProduction
	if debug {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, log *zap.SugaredLogger, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ownMiddleware.Logger(log))

	h.record.Routes(r)
	h.editor.Routes(r)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать Redis", zap.Error(err))
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	ctx context.Context,
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	recordRepo := repo.NewRecordRepository(cfg, log, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	recordUC := recorduc.NewRecordUseCase(recordRepo, repo.NewFileStorage(), log, cfg.AppName, cfg.BoardSize)

	sessions := repo.NewSessionRedisStorage(databaseAdapters.redisAdapter.GetClient(), log)
	manager := editor.NewManager(recordUC, sessions, log, cfg.SessionTTL())
	go manager.RunSweeper(ctx, time.Minute)

	return &mainDeliveryHandler{
		record: recordDelivery.NewRecordHandler(log, recordUC),
		editor: editorDelivery.NewEditorHandler(log, manager),
	}
}

func newHealthServer() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return grpcServer, healthServer
}

// watchAdapters переводит health в NOT_SERVING, пока mongo или redis не отвечают
func watchAdapters(ctx context.Context, log *zap.SugaredLogger, hs *health.Server, dbs *dataBaseAdapters) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := dbs.mongoAdapter.Ping(pingCtx); err != nil {
			log.Warnw("mongo ping failed", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if err := dbs.redisAdapter.Ping(pingCtx); err != nil {
			log.Warnw("redis ping failed", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		cancel()

		if status != last {
			hs.SetServingStatus("", status)
			last = status
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
