package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/schedule"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func digestSlots() []schedule.Slot {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []schedule.Slot{
		{
			Time: day.Add(7*time.Hour + 15*time.Minute),
			Medications: []meds.Medication{
				{Name: "lisinopril"},
			},
		},
		{
			Time: day.Add(19 * time.Hour),
			Medications: []meds.Medication{
				{Name: "metformin"},
				{Name: "ibuprofen"},
			},
		},
	}
}

func TestSendDailyDigest(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, nil)

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := svc.SendDailyDigest(context.Background(), Recipient{Email: "pat@example.com", Name: "Pat"}, date, digestSlots())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "pat@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Monday, January 1")
	assert.Contains(t, msg.Body, "7:15 AM")
	assert.Contains(t, msg.Body, "metformin, ibuprofen")
	assert.Contains(t, msg.HTML, "<strong>7:00 PM</strong>")
}

func TestSendDailyDigestSkipsEmptySchedule(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, nil)

	err := svc.SendDailyDigest(context.Background(), Recipient{Email: "pat@example.com"}, time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestSendDailyDigestSkipsMissingEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, nil)

	err := svc.SendDailyDigest(context.Background(), Recipient{}, time.Now(), digestSlots())
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestSendDailyDigestPropagatesSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(sender, nil, nil)

	err := svc.SendDailyDigest(context.Background(), Recipient{Email: "pat@example.com"}, time.Now(), digestSlots())
	assert.Error(t, err)
}

func TestNewSendGridSenderRequiresKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))
	assert.NotNil(t, NewSendGridSender(SendGridConfig{APIKey: "sg-key", FromEmail: "noreply@dosewise.app"}, nil))
}

func TestStubSenderNeverErrors(t *testing.T) {
	s := NewStubEmailSender(nil)
	assert.NoError(t, s.Send(context.Background(), EmailMessage{To: "pat@example.com"}))
}
