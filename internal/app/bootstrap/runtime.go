// Package bootstrap assembles shared runtime dependencies for the api and
// worker binaries.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/dosewise/dosewise-platform/internal/config"
	"github.com/dosewise/dosewise-platform/internal/interactions"
	"github.com/dosewise/dosewise-platform/internal/labeltext"
	"github.com/dosewise/dosewise-platform/internal/notify"
	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/internal/schedule"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildInteractionEngine loads the rule table, falling back to the embedded
// default, or to an empty fail-open engine when the table is broken.
func BuildInteractionEngine(cfg *appconfig.Config, logger *logging.Logger) *interactions.Engine {
	engine := interactions.NewEngineFromConfig(cfg.InteractionRulesPath, logger)
	if !engine.Loaded() {
		logger.Warn("interaction rules not loaded, schedules will carry no conflict data")
	}
	return engine
}

// BuildScheduleBuilder wires the clustering pipeline with configured knobs.
func BuildScheduleBuilder(cfg *appconfig.Config, engine *interactions.Engine, logger *logging.Logger, m *metrics.SchedulingMetrics) *schedule.Builder {
	return schedule.NewBuilder(engine, schedule.BuilderConfig{
		MergeWindow: cfg.MergeWindow,
		MinSlotGap:  cfg.MinSlotGap,
	}, logger, m)
}

// BuildLabelEnricher assembles the label text pipeline: HTTP provider client,
// Redis cache and S3 archive. Any of the three may be absent; the Enricher
// degrades to whatever is wired.
func BuildLabelEnricher(cfg *appconfig.Config, redisClient *redis.Client, s3Client *s3.Client, m *metrics.SchedulingMetrics, logger *logging.Logger) *labeltext.Enricher {
	client := labeltext.NewClient(cfg.LabelProviderBaseURL, logger)
	cache := labeltext.NewCache(redisClient, cfg.LabelCacheTTL)
	var archive *labeltext.Archive
	if cfg.LabelArchiveBucket != "" && s3Client != nil {
		archive = labeltext.NewArchive(s3Client, cfg.LabelArchiveBucket, logger)
	}
	return labeltext.NewEnricher(client, cache, archive, m, logger)
}

// BuildEmailSender selects the digest delivery provider from config:
// "sendgrid", "ses" or the logging stub.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			logger.Info("sendgrid email sender initialized")
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub sender")
	case "ses":
		if sender := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			logger.Info("ses email sender initialized")
			return sender
		}
		logger.Warn("ses selected but no client available, falling back to stub sender")
	}
	return notify.NewStubEmailSender(logger)
}
