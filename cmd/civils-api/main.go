package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AmmarAzhad/civils/internal/api"
	"github.com/AmmarAzhad/civils/internal/cache"
	"github.com/AmmarAzhad/civils/internal/engine"
	"github.com/AmmarAzhad/civils/internal/mq"
	"github.com/AmmarAzhad/civils/internal/repo"
	"github.com/AmmarAzhad/civils/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civils_api_http_requests_total",
		Help: "Total HTTP requests handled by civils_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting civils-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём репозитории
	workflowRepo := repo.NewWorkflowRepo(pool)
	execRepo := repo.NewExecutionRepo(pool)

	// Redis опционален: без него кэш вырождается в прямой проход к БД
	rdb, err := cache.NewClient(context.Background())
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
		logger.Info("connected to redis")
	}
	workflows := cache.NewWorkflowCache(workflowRepo, rdb, logger)

	// RabbitMQ опционален: без него status updates не публикуются
	var events engine.Sink
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		amqpURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(amqpURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, event publishing disabled", "error", err)
	} else {
		defer conn.Close()
		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to setup topology", "error", err)
			os.Exit(1)
		}
		events = mq.NewEventSink(mq.NewPublisher(conn, logger), logger)
	}

	// Создаём движок выполнения
	orchestrator := engine.New(engine.Config{
		Workflows: workflows,
		Store:     execRepo,
		Events:    events,
		Logger:    logger,
	})

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		WorkflowRepo: workflowRepo,
		ExecRepo:     execRepo,
		Workflows:    workflows,
		Engine:       orchestrator,
		Logger:       logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
