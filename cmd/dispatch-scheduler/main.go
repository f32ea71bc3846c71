// Dispatch scheduler — демон, выполняющий рассылку анкет по cron-расписанию.
//
// Конфигурация: TOML файл (DISPATCH_CONFIG, по умолчанию dispatch.toml)
// и переменные окружения (DISPATCH_*, DB_URL, RABBITMQ_URL).
// Без DB_URL история runs и leader election отключены,
// без RABBITMQ_URL — heartbeat-события и триггеры из очереди.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shaiso/Dispatch/internal/api"
	"github.com/shaiso/Dispatch/internal/config"
	"github.com/shaiso/Dispatch/internal/dispatch"
	"github.com/shaiso/Dispatch/internal/mq"
	"github.com/shaiso/Dispatch/internal/referral"
	"github.com/shaiso/Dispatch/internal/repo"
	"github.com/shaiso/Dispatch/internal/scheduler"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

const schedLockKey int64 = 424243

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger("dispatch-scheduler")
	logger.Info("starting dispatch-scheduler")

	configPath := "dispatch.toml"
	if v := os.Getenv("DISPATCH_CONFIG"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := referral.NewClient(referral.Config{
		BaseURL:      cfg.Referral.BaseURL,
		APIKey:       cfg.Referral.APIKey,
		APIKeyHeader: cfg.Referral.APIKeyHeader,
		Timeout:      cfg.Timeout(),
	})
	if err != nil {
		logger.Error("failed to create referral client", "error", err)
		os.Exit(1)
	}

	jobCfg := scheduler.JobConfig{
		Orchestrator: dispatch.New(dispatch.Config{Client: client, Logger: logger}),
		RunConfig:    cfg.RunConfiguration(),
		Logger:       logger,
	}
	schedCfg := scheduler.Config{
		Location:  cfg.Location(),
		Job:       cfg.Job.Name,
		LateAfter: cfg.LateAfter(),
		Logger:    logger,
	}
	var runStore api.RunStore

	// Postgres — история runs и leader election
	if cfg.Database.URL != "" {
		pool, err := repo.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repo.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		runRepo := repo.NewRunRepo(pool)
		jobCfg.Store = runRepo
		runStore = runRepo
		schedCfg.Locker = repo.NewAdvisoryLock(pool, schedLockKey)
	}

	// RabbitMQ — heartbeat-события и внешние триггеры
	var conn *mq.Connection
	if cfg.RabbitMQ.URL != "" {
		conn, err = mq.NewConnection(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := mq.SetupTopology(ctx, conn); err != nil {
			logger.Error("failed to setup topology", "error", err)
			os.Exit(1)
		}
		jobCfg.Publisher = mq.NewPublisher(conn, logger)
	}

	schedCfg.Runner = scheduler.NewJob(jobCfg)
	schedCfg.Schedule, err = scheduler.ParseSchedule(cfg.Job.Cron)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	sched, err := scheduler.New(schedCfg)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if cfg.Job.RunOnStart {
		sched.Trigger(scheduler.ReasonStartup)
	}

	if conn != nil {
		consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
			Queue:   mq.QueueTrigger,
			Handler: triggerHandler(sched),
		})
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("trigger consumer stopped", "error", err)
			}
		}()
	}

	// HTTP: /healthz, /metrics, /api/v1
	handler := api.NewHandler(api.Config{
		Runs:    runStore,
		Trigger: sched,
		Job:     cfg.Job.Name,
		Logger:  logger,
	})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// scheduler loop до сигнала завершения
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
	}
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// triggerHandler превращает сообщения очереди dispatch.trigger в Scheduler.Trigger.
func triggerHandler(sched *scheduler.Scheduler) mq.Handler {
	return func(ctx context.Context, msg *mq.Message) error {
		payload, err := mq.ParsePayload[mq.TriggerPayload](msg)
		if err != nil {
			return err
		}

		reason := payload.Reason
		if reason == "" {
			reason = scheduler.ReasonMQ
		}
		if !sched.Trigger(reason) {
			telemetry.FromContext(ctx).Info("trigger coalesced, run already queued", "reason", reason)
		}
		return nil
	}
}
