package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dosewise/dosewise-platform/cmd/mainconfig"
	"github.com/dosewise/dosewise-platform/internal/api/router"
	"github.com/dosewise/dosewise-platform/internal/app/bootstrap"
	appconfig "github.com/dosewise/dosewise-platform/internal/config"
	"github.com/dosewise/dosewise-platform/internal/http/handlers"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/notify"
	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/internal/reminders"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting dosewise API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedMetrics := metrics.NewSchedulingMetrics(registry)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	engine := bootstrap.BuildInteractionEngine(cfg, logger)
	builder := bootstrap.BuildScheduleBuilder(cfg, engine, logger, schedMetrics)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var s3Client *s3.Client
	if cfg.LabelArchiveBucket != "" {
		s3Client = s3.NewFromConfig(awsCfg)
	}
	enricher := bootstrap.BuildLabelEnricher(cfg, redisClient, s3Client, schedMetrics, logger)

	var sesClient *sesv2.Client
	if cfg.EmailProvider == "ses" {
		sesClient = sesv2.NewFromConfig(awsCfg)
	}
	emailSender := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	digests := notify.NewService(emailSender, schedMetrics, logger)

	medsRepo := meds.NewRepository(db)
	routineStore := routine.NewStore(redisClient)

	// The recompute pipeline runs over SQS/DynamoDB in deployed environments.
	// USE_MEMORY_QUEUE swaps in an in-process queue with an inline worker so
	// the whole loop runs in a single binary for local development.
	var (
		publisher        *reminders.Publisher
		jobStatusHandler *handlers.JobStatusHandler
	)
	if cfg.UseMemoryQueue {
		queue := reminders.NewMemoryQueue(0)
		publisher = reminders.NewPublisher(queue, nil, logger)

		worker := reminders.NewWorker(queue, nil, medsRepo, routineStore, builder, digests, logger,
			reminders.WithWorkerCount(cfg.WorkerCount),
			reminders.WithRecipientResolver(reminders.NewStaticResolver(cfg.PatientContacts)),
		)
		workerCtx, stopWorker := context.WithCancel(ctx)
		defer stopWorker()
		worker.Start(workerCtx)
		logger.Info("using in-memory recompute queue with inline worker", "workers", cfg.WorkerCount)
	} else {
		sqsClient := sqs.NewFromConfig(awsCfg)
		queue := reminders.NewSQSQueue(sqsClient, cfg.ReminderQueueURL)
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		jobStore := reminders.NewJobStore(dynamoClient, cfg.ScheduleJobsTable, logger)
		publisher = reminders.NewPublisher(queue, jobStore, logger)
		jobStatusHandler = handlers.NewJobStatusHandler(jobStore, logger)
	}

	medsHandler := meds.NewHandler(medsRepo, publisher, enricher, logger)
	routineHandler := routine.NewHandler(routineStore, publisher, logger)
	scheduleHandler := handlers.NewScheduleHandler(medsRepo, routineStore, builder, engine, logger)
	interactionsHandler := handlers.NewInteractionsHandler(engine, schedMetrics, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		MedsHandler:         medsHandler,
		RoutineHandler:      routineHandler,
		ScheduleHandler:     scheduleHandler,
		InteractionsHandler: interactionsHandler,
		JobStatusHandler:    jobStatusHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
