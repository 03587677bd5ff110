package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/internal/schedule"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// Recipient is the patient contact a digest goes to.
type Recipient struct {
	Email string
	Name  string
}

// Service formats a day's reminder slots into a digest email and sends it.
type Service struct {
	email   EmailSender
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

func NewService(email EmailSender, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, metrics: m, logger: logger}
}

// SendDailyDigest emails the patient one message covering every reminder
// slot for the day. An empty schedule sends nothing.
func (s *Service) SendDailyDigest(ctx context.Context, to Recipient, date time.Time, slots []schedule.Slot) error {
	if s.email == nil {
		s.logger.Debug("notify: no email sender configured, skipping digest")
		return nil
	}
	if to.Email == "" {
		s.logger.Debug("notify: recipient has no email, skipping digest")
		return nil
	}
	if len(slots) == 0 {
		s.logger.Debug("notify: empty schedule, skipping digest", "date", date.Format("2006-01-02"))
		return nil
	}

	msg := EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: fmt.Sprintf("Your medication schedule for %s", date.Format("Monday, January 2")),
		Body:    formatDigestText(to.Name, date, slots),
		HTML:    formatDigestHTML(date, slots),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.metrics.ObserveReminder("failed")
		return fmt.Errorf("notify: send digest: %w", err)
	}
	s.metrics.ObserveReminder("sent")
	s.logger.Info("reminder digest sent", "to", to.Email, "date", date.Format("2006-01-02"), "slots", len(slots))
	return nil
}

func formatDigestText(name string, date time.Time, slots []schedule.Slot) string {
	var b strings.Builder
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Here is your medication schedule for %s:\n\n", date.Format("Monday, January 2"))
	for _, slot := range slots {
		fmt.Fprintf(&b, "  %s - %s\n", slot.Time.Format("3:04 PM"), medicationList(slot))
	}
	b.WriteString("\nTake care,\nDoseWise\n")
	return b.String()
}

func formatDigestHTML(date time.Time, slots []schedule.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Medication schedule for %s</h2><ul>", date.Format("Monday, January 2"))
	for _, slot := range slots {
		fmt.Fprintf(&b, "<li><strong>%s</strong> &mdash; %s</li>",
			slot.Time.Format("3:04 PM"), medicationList(slot))
	}
	b.WriteString("</ul>")
	return b.String()
}

func medicationList(slot schedule.Slot) string {
	names := make([]string, 0, len(slot.Medications))
	for _, m := range slot.Medications {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
