package routine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists routines in Redis keyed by patient.
type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(patientID string) string {
	return "routine:" + patientID
}

// Get returns the patient's routine, or nil when none is stored.
func (s *Store) Get(ctx context.Context, patientID string) (*Routine, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	data, err := s.redis.Get(ctx, s.key(patientID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("routine: get: %w", err)
	}
	var r Routine
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("routine: decode: %w", err)
	}
	return &r, nil
}

// GetOrDefault returns the stored routine, falling back to Default().
func (s *Store) GetOrDefault(ctx context.Context, patientID string) (Routine, error) {
	r, err := s.Get(ctx, patientID)
	if err != nil {
		return Routine{}, err
	}
	if r == nil {
		return Default(), nil
	}
	return *r, nil
}

// Put stores the routine after validation.
func (s *Store) Put(ctx context.Context, patientID string, r Routine) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("routine: store not configured")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("routine: encode: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(patientID), data, 0).Err(); err != nil {
		return fmt.Errorf("routine: put: %w", err)
	}
	return nil
}

// Delete removes a patient's stored routine.
func (s *Store) Delete(ctx context.Context, patientID string) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(patientID)).Err(); err != nil {
		return fmt.Errorf("routine: delete: %w", err)
	}
	return nil
}
