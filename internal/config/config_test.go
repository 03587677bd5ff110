package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MergeWindow != 10*time.Minute {
		t.Errorf("expected default merge window 10m, got %s", cfg.MergeWindow)
	}
	if cfg.MinSlotGap != 15*time.Minute {
		t.Errorf("expected default min slot gap 15m, got %s", cfg.MinSlotGap)
	}
	if cfg.EmailProvider != "stub" {
		t.Errorf("expected default email provider stub, got %s", cfg.EmailProvider)
	}
	if cfg.ScheduleJobsTable != "schedule_jobs" {
		t.Errorf("expected default jobs table, got %s", cfg.ScheduleJobsTable)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MERGE_WINDOW", "5m")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.MergeWindow != 5*time.Minute {
		t.Errorf("expected merge window 5m, got %s", cfg.MergeWindow)
	}
	if !cfg.UseMemoryQueue {
		t.Error("expected memory queue enabled")
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("MIN_SLOT_GAP", "garbage")

	cfg := Load()

	if cfg.WorkerCount != 2 {
		t.Errorf("expected fallback worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.MinSlotGap != 15*time.Minute {
		t.Errorf("expected fallback min slot gap, got %s", cfg.MinSlotGap)
	}
}
