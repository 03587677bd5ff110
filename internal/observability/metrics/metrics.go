package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the scheduling pipeline.
type SchedulingMetrics struct {
	schedulesBuilt   *prometheus.CounterVec
	slotsPerSchedule prometheus.Histogram
	conflictsFound   *prometheus.CounterVec
	separationPushes prometheus.Counter
	labelParses      *prometheus.CounterVec
	remindersSent    *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		schedulesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dosewise",
			Subsystem: "schedule",
			Name:      "builds_total",
			Help:      "Total schedule builds",
		}, []string{"outcome"}),
		slotsPerSchedule: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dosewise",
			Subsystem: "schedule",
			Name:      "slots_per_build",
			Help:      "Slots produced per schedule build",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 24},
		}),
		conflictsFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dosewise",
			Subsystem: "interactions",
			Name:      "conflicts_total",
			Help:      "Pairwise interaction conflicts detected",
		}, []string{"kind"}),
		separationPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosewise",
			Subsystem: "schedule",
			Name:      "separation_pushes_total",
			Help:      "Slots pushed later to satisfy separation constraints",
		}),
		labelParses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dosewise",
			Subsystem: "labels",
			Name:      "parses_total",
			Help:      "Label text parses by food-rule outcome",
		}, []string{"food_rule"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dosewise",
			Subsystem: "reminders",
			Name:      "dispatched_total",
			Help:      "Reminder digests dispatched",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.schedulesBuilt, m.slotsPerSchedule, m.conflictsFound,
		m.separationPushes, m.labelParses, m.remindersSent)
	return m
}

func (m *SchedulingMetrics) ObserveBuild(outcome string, slots int) {
	if m == nil {
		return
	}
	m.schedulesBuilt.WithLabelValues(outcome).Inc()
	m.slotsPerSchedule.Observe(float64(slots))
}

func (m *SchedulingMetrics) ObserveConflict(kind string) {
	if m == nil {
		return
	}
	m.conflictsFound.WithLabelValues(kind).Inc()
}

func (m *SchedulingMetrics) ObserveSeparationPush() {
	if m == nil {
		return
	}
	m.separationPushes.Inc()
}

func (m *SchedulingMetrics) ObserveLabelParse(foodRule string) {
	if m == nil {
		return
	}
	if foodRule == "" {
		foodRule = "none"
	}
	m.labelParses.WithLabelValues(foodRule).Inc()
}

func (m *SchedulingMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(status).Inc()
}
