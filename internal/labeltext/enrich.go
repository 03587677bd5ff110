package labeltext

import (
	"context"

	"github.com/dosewise/dosewise-platform/internal/labelrules"
	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// Enricher resolves label-derived rules for a medication name: cache first,
// then the provider, archiving fresh fetches. It backs the pre-fill hook on
// medication creation.
type Enricher struct {
	client  *Client
	cache   *Cache
	archive *Archive
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

func NewEnricher(client *Client, cache *Cache, archive *Archive, m *metrics.SchedulingMetrics, logger *logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Enricher{client: client, cache: cache, archive: archive, metrics: m, logger: logger}
}

// Rules returns the parsed label rules for a medication name. Any failure
// along the way degrades to empty rules; callers treat the result as a
// suggestion, never a requirement.
func (e *Enricher) Rules(ctx context.Context, medName string) labelrules.ParsedRule {
	sections := e.sections(ctx, medName)
	if sections == nil {
		return labelrules.ParsedRule{Food: labelrules.FoodNone}
	}

	rule := labelrules.Parse(sections.Combined())
	e.metrics.ObserveLabelParse(string(rule.Food))
	return rule
}

func (e *Enricher) sections(ctx context.Context, medName string) *Sections {
	cached, err := e.cache.Get(ctx, medName)
	if err != nil {
		e.logger.Warn("label cache read failed", "medication", medName, "error", err)
	}
	if cached != nil {
		return cached
	}

	if !e.client.Configured() {
		return nil
	}
	fetched, err := e.client.Fetch(ctx, medName)
	if err != nil {
		e.logger.Warn("label fetch failed", "medication", medName, "error", err)
		return nil
	}

	if err := e.cache.Put(ctx, medName, fetched); err != nil {
		e.logger.Warn("label cache write failed", "medication", medName, "error", err)
	}
	if err := e.archive.Store(ctx, medName, fetched); err != nil {
		e.logger.Warn("label archive failed", "medication", medName, "error", err)
	}
	return fetched
}
