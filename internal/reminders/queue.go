// Package reminders runs the asynchronous recompute pipeline: schedule
// rebuild jobs published on every medication or routine change, consumed by
// a worker pool that rebuilds the day's slots and emails the digest.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// jobPayload is the wire form of one recompute request.
type jobPayload struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	// Date is the schedule day in YYYY-MM-DD form.
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func encodePayload(payload jobPayload) (jobPayload, string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return jobPayload{}, "", fmt.Errorf("reminders: encode payload: %w", err)
	}
	return payload, string(body), nil
}
