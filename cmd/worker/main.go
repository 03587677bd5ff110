package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/dosewise/dosewise-platform/cmd/mainconfig"
	"github.com/dosewise/dosewise-platform/internal/app/bootstrap"
	appconfig "github.com/dosewise/dosewise-platform/internal/config"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/notify"
	"github.com/dosewise/dosewise-platform/internal/reminders"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)

	if cfg.UseMemoryQueue {
		logger.Error("reminder worker cannot run when USE_MEMORY_QUEUE=true; the API process runs inline workers instead")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	sqsClient := sqs.NewFromConfig(awsConfig)
	queue := reminders.NewSQSQueue(sqsClient, cfg.ReminderQueueURL)
	dynamoClient := dynamodb.NewFromConfig(awsConfig)
	jobStore := reminders.NewJobStore(dynamoClient, cfg.ScheduleJobsTable, logger)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	engine := bootstrap.BuildInteractionEngine(cfg, logger)
	builder := bootstrap.BuildScheduleBuilder(cfg, engine, logger, nil)

	var sesClient *sesv2.Client
	if cfg.EmailProvider == "ses" {
		sesClient = sesv2.NewFromConfig(awsConfig)
	}
	emailSender := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	digests := notify.NewService(emailSender, nil, logger)

	medsRepo := meds.NewRepository(db)
	routineStore := routine.NewStore(redisClient)

	worker := reminders.NewWorker(queue, jobStore, medsRepo, routineStore, builder, digests, logger,
		reminders.WithWorkerCount(cfg.WorkerCount),
		reminders.WithRecipientResolver(reminders.NewStaticResolver(cfg.PatientContacts)),
	)

	worker.Start(ctx)
	logger.Info("reminder worker started", "workers", cfg.WorkerCount, "queue", cfg.ReminderQueueURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down reminder worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("reminder worker stopped")
	case <-doneCtx.Done():
		logger.Error("reminder worker shutdown timed out", "error", doneCtx.Err())
	}
}
