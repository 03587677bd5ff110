package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/notify"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/internal/schedule"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// MedicationLister supplies the patient's active medications.
type MedicationLister interface {
	ListActive(ctx context.Context, patientID string) ([]meds.Medication, error)
}

// RoutineSource supplies the patient's daily routine.
type RoutineSource interface {
	GetOrDefault(ctx context.Context, patientID string) (routine.Routine, error)
}

// SlotBuilder rebuilds the day's reminder slots.
type SlotBuilder interface {
	BuildSlots(ctx context.Context, medications []meds.Medication, rt routine.Routine, date time.Time) []schedule.Slot
}

// DigestSender delivers the rebuilt schedule to the patient.
type DigestSender interface {
	SendDailyDigest(ctx context.Context, to notify.Recipient, date time.Time, slots []schedule.Slot) error
}

// RecipientResolver maps a patient ID to a digest recipient. Returning an
// empty recipient skips delivery without failing the job.
type RecipientResolver interface {
	Resolve(ctx context.Context, patientID string) (notify.Recipient, error)
}

// JobUpdater is the subset of JobStore the worker needs.
type JobUpdater interface {
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, slotCount int) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	recipients       RecipientResolver
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait per receive.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds > 0 {
			cfg.receiveWaitSecs = seconds
		}
	}
}

// WithRecipientResolver wires patient contact lookup for digest delivery.
func WithRecipientResolver(resolver RecipientResolver) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.recipients = resolver
	}
}

// Worker consumes recompute jobs, rebuilds the day's schedule and sends the
// reminder digest.
type Worker struct {
	queue       queueClient
	jobs        JobUpdater
	medications MedicationLister
	routines    RoutineSource
	builder     SlotBuilder
	digests     DigestSender
	recipients  RecipientResolver
	logger      *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

func NewWorker(queue queueClient, jobs JobUpdater, medications MedicationLister, routines RoutineSource, builder SlotBuilder, digests DigestSender, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("reminders: queue cannot be nil")
	}
	if medications == nil {
		panic("reminders: medication lister cannot be nil")
	}
	if builder == nil {
		panic("reminders: slot builder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		queue:       queue,
		jobs:        jobs,
		medications: medications,
		routines:    routines,
		builder:     builder,
		digests:     digests,
		recipients:  cfg.recipients,
		logger:      logger,
		cfg:         cfg,
	}
}

// Start launches the consumer goroutines. They exit when ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("reminder worker started", "worker_id", workerID)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("reminder worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive recompute jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload jobPayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode recompute job", "error", err, "msg_id", msg.ID)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	w.markProcessing(ctx, payload.ID)

	slotCount, err := w.rebuild(ctx, payload)
	if err != nil {
		w.logger.Error("schedule rebuild failed",
			"error", err, "job_id", payload.ID, "patient_id", payload.PatientID)
		w.markFailed(ctx, payload.ID, err.Error())
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	w.markCompleted(ctx, payload.ID, slotCount)
	w.deleteMessage(msg.ReceiptHandle)
	w.logger.Info("schedule rebuilt",
		"job_id", payload.ID, "patient_id", payload.PatientID,
		"date", payload.Date, "slots", slotCount, "reason", payload.Reason)
}

var tracer = otel.Tracer("dosewise.internal.reminders")

func (w *Worker) rebuild(ctx context.Context, payload jobPayload) (int, error) {
	ctx, span := tracer.Start(ctx, "reminders.rebuild")
	defer span.End()
	span.SetAttributes(
		attribute.String("dosewise.job_id", payload.ID),
		attribute.String("dosewise.reason", payload.Reason),
	)

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return 0, fmt.Errorf("reminders: invalid job date %q: %w", payload.Date, err)
	}

	medications, err := w.medications.ListActive(ctx, payload.PatientID)
	if err != nil {
		return 0, fmt.Errorf("reminders: list medications: %w", err)
	}

	var rt routine.Routine
	if w.routines != nil {
		rt, err = w.routines.GetOrDefault(ctx, payload.PatientID)
		if err != nil {
			return 0, fmt.Errorf("reminders: load routine: %w", err)
		}
	} else {
		rt = routine.Default()
	}

	slots := w.builder.BuildSlots(ctx, medications, rt, date)

	if err := w.sendDigest(ctx, payload.PatientID, date, slots); err != nil {
		return 0, err
	}
	return len(slots), nil
}

func (w *Worker) sendDigest(ctx context.Context, patientID string, date time.Time, slots []schedule.Slot) error {
	if w.digests == nil || w.recipients == nil {
		return nil
	}
	to, err := w.recipients.Resolve(ctx, patientID)
	if err != nil {
		w.logger.Warn("recipient lookup failed, skipping digest", "error", err, "patient_id", patientID)
		return nil
	}
	if to.Email == "" {
		return nil
	}
	if err := w.digests.SendDailyDigest(ctx, to, date, slots); err != nil {
		return fmt.Errorf("reminders: send digest: %w", err)
	}
	return nil
}

func (w *Worker) markProcessing(ctx context.Context, jobID string) {
	if w.jobs == nil || jobID == "" {
		return
	}
	if err := w.jobs.MarkProcessing(ctx, jobID); err != nil {
		w.logger.Warn("failed to mark job processing", "error", err, "job_id", jobID)
	}
}

func (w *Worker) markCompleted(ctx context.Context, jobID string, slotCount int) {
	if w.jobs == nil || jobID == "" {
		return
	}
	if err := w.jobs.MarkCompleted(ctx, jobID, slotCount); err != nil {
		w.logger.Warn("failed to mark job completed", "error", err, "job_id", jobID)
	}
}

func (w *Worker) markFailed(ctx context.Context, jobID, errMsg string) {
	if w.jobs == nil || jobID == "" {
		return
	}
	if err := w.jobs.MarkFailed(ctx, jobID, errMsg); err != nil {
		w.logger.Warn("failed to mark job failed", "error", err, "job_id", jobID)
	}
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Warn("failed to delete queue message", "error", err)
	}
}
