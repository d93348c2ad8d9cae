package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics for the engine. The increment
// helpers are nil-safe so library consumers and tests can run without one.
type Registry struct {
	// XP metrics
	XPGrantsTotal prometheus.CounterVec
	LevelUpsTotal prometheus.Counter

	// Workflow metrics
	TasksCreatedTotal       prometheus.Counter
	SubmissionsCreatedTotal prometheus.Counter
	SubmissionsDecidedTotal prometheus.CounterVec
	RoleGrantIntentsTotal   prometheus.Counter

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
}

// NewRegistry initializes and returns a new Registry with all metrics
func NewRegistry() *Registry {
	return &Registry{
		XPGrantsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_xp_grants_total",
				Help: "Total XP grants applied, by direction (credit or debit)",
			},
			[]string{"direction"},
		),
		LevelUpsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_level_ups_total",
				Help: "Total level-up events detected on XP grants",
			},
		),
		TasksCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_tasks_created_total",
				Help: "Total tasks published by moderators",
			},
		),
		SubmissionsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_submissions_created_total",
				Help: "Total submissions created by members",
			},
		),
		SubmissionsDecidedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_submissions_decided_total",
				Help: "Total submission decisions by terminal status",
			},
			[]string{"status"},
		),
		RoleGrantIntentsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_role_grant_intents_total",
				Help: "Total role-grant intents emitted on level milestones",
			},
		),
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
	}
}

// IncXPGrant counts one applied XP delta.
func (m *Registry) IncXPGrant(direction string) {
	if m == nil {
		return
	}
	m.XPGrantsTotal.WithLabelValues(direction).Inc()
}

// IncLevelUp counts one level-up event.
func (m *Registry) IncLevelUp() {
	if m == nil {
		return
	}
	m.LevelUpsTotal.Inc()
}

// IncTaskCreated counts one published task.
func (m *Registry) IncTaskCreated() {
	if m == nil {
		return
	}
	m.TasksCreatedTotal.Inc()
}

// IncSubmissionCreated counts one new submission.
func (m *Registry) IncSubmissionCreated() {
	if m == nil {
		return
	}
	m.SubmissionsCreatedTotal.Inc()
}

// IncSubmissionDecided counts one decision by terminal status.
func (m *Registry) IncSubmissionDecided(status string) {
	if m == nil {
		return
	}
	m.SubmissionsDecidedTotal.WithLabelValues(status).Inc()
}

// IncRoleGrantIntent counts one emitted role-grant intent.
func (m *Registry) IncRoleGrantIntent() {
	if m == nil {
		return
	}
	m.RoleGrantIntentsTotal.Inc()
}

// IncCacheHit counts one cache hit for the named cache.
func (m *Registry) IncCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// IncCacheMiss counts one cache miss for the named cache.
func (m *Registry) IncCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}
