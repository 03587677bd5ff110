package reminders

import (
	"context"
	"time"

	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// jobTracker is the subset of JobStore the publisher needs.
type jobTracker interface {
	PutQueued(ctx context.Context, job *JobRecord) error
}

// Publisher enqueues schedule recompute jobs. It satisfies the invalidation
// hooks on the medication and routine handlers, so every mutation leads to a
// full rebuild instead of an in-place patch.
type Publisher struct {
	queue  queueClient
	jobs   jobTracker
	logger *logging.Logger
	now    func() time.Time
}

func NewPublisher(queue queueClient, jobs jobTracker, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("reminders: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, jobs: jobs, logger: logger, now: time.Now}
}

// Publish enqueues one recompute job and returns its ID. Job tracking is
// best-effort: a tracker failure does not block the publish.
func (p *Publisher) Publish(ctx context.Context, patientID string, date time.Time, reason string) (string, error) {
	payload, body, err := encodePayload(jobPayload{
		PatientID: patientID,
		Date:      date.Format("2006-01-02"),
		Reason:    reason,
	})
	if err != nil {
		return "", err
	}

	if p.jobs != nil {
		record := &JobRecord{
			JobID:     payload.ID,
			PatientID: patientID,
			Date:      payload.Date,
			Reason:    reason,
		}
		if err := p.jobs.PutQueued(ctx, record); err != nil {
			p.logger.Warn("failed to record recompute job", "error", err, "job_id", payload.ID)
		}
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return "", err
	}
	p.logger.Debug("recompute job published",
		"job_id", payload.ID, "patient_id", patientID, "date", payload.Date, "reason", reason)
	return payload.ID, nil
}

// MedicationsChanged enqueues a rebuild of today's schedule for the patient.
func (p *Publisher) MedicationsChanged(ctx context.Context, patientID string) {
	p.publishToday(ctx, patientID, "medications_changed")
}

// RoutineChanged enqueues a rebuild of today's schedule for the patient.
func (p *Publisher) RoutineChanged(ctx context.Context, patientID string) {
	p.publishToday(ctx, patientID, "routine_changed")
}

func (p *Publisher) publishToday(ctx context.Context, patientID, reason string) {
	if _, err := p.Publish(ctx, patientID, p.now().UTC(), reason); err != nil {
		p.logger.Error("failed to publish recompute job",
			"error", err, "patient_id", patientID, "reason", reason)
	}
}
