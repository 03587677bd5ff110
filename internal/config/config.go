package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFormat     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Scheduling knobs. MergeWindow is how far apart two candidate doses can
	// be and still share a reminder slot; MinSlotGap is the floor applied
	// between any two distinct slots.
	MergeWindow time.Duration
	MinSlotGap  time.Duration

	// Path to a YAML interaction rule table overriding the embedded default.
	InteractionRulesPath string

	// Label text provider.
	LabelProviderBaseURL string
	LabelCacheTTL        time.Duration
	LabelArchiveBucket   string

	// Reminder pipeline.
	UseMemoryQueue    bool
	WorkerCount       int
	ReminderQueueURL  string
	ScheduleJobsTable string
	// PatientContacts holds "patientID=email" pairs for digest delivery.
	PatientContacts []string

	// Email delivery for reminder digests: "sendgrid", "ses" or "stub".
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		MergeWindow: getEnvAsDuration("MERGE_WINDOW", 10*time.Minute),
		MinSlotGap:  getEnvAsDuration("MIN_SLOT_GAP", 15*time.Minute),

		InteractionRulesPath: getEnv("INTERACTION_RULES_PATH", ""),

		LabelProviderBaseURL: getEnv("LABEL_PROVIDER_BASE_URL", ""),
		LabelCacheTTL:        getEnvAsDuration("LABEL_CACHE_TTL", 24*time.Hour),
		LabelArchiveBucket:   getEnv("LABEL_ARCHIVE_BUCKET", ""),

		UseMemoryQueue:    getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 2),
		ReminderQueueURL:  getEnv("REMINDER_QUEUE_URL", ""),
		ScheduleJobsTable: getEnv("SCHEDULE_JOBS_TABLE", "schedule_jobs"),
		PatientContacts:   getEnvAsList("PATIENT_CONTACTS"),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "DoseWise"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "DoseWise"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
