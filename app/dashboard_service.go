package app

import (
	"context"
	"fmt"
	"time"

	"exampulse/domain/core"
	"exampulse/domain/stats"
	"exampulse/domain/student"
	"exampulse/internal"
	"exampulse/internal/analysis"
	"exampulse/internal/session"
	"exampulse/internal/store"
)

// KPIPrecision is the rounding used on headline cards
const KPIPrecision = 1

// Dashboard is everything one filtered view shows
type Dashboard struct {
	Filter          student.Filter           `json:"filter"`
	Snapshot        core.SnapshotID          `json:"snapshot"`
	RecordCount     int                      `json:"recordCount"`
	KPIs            []stats.KPI              `json:"kpis"`
	Summaries       []stats.GroupSummary     `json:"summaries"`
	Genders         []stats.GenderAverages   `json:"genderComparison"`
	Correlations    *stats.CorrelationMatrix `json:"correlations,omitempty"`
	CorrelationNote string                   `json:"correlationNote,omitempty"`
	Demographics    stats.Demographics       `json:"demographics"`
	GeneratedAt     time.Time                `json:"generatedAt"`
}

// Display returns a copy rounded for presentation: KPI and gender averages to
// one decimal, everything else to precision places.
func (d *Dashboard) Display(precision int) *Dashboard {
	out := *d

	out.KPIs = make([]stats.KPI, len(d.KPIs))
	for i, k := range d.KPIs {
		out.KPIs[i] = k.Rounded(KPIPrecision)
	}

	out.Summaries = make([]stats.GroupSummary, len(d.Summaries))
	for i, s := range d.Summaries {
		out.Summaries[i] = s.Rounded(precision)
	}

	out.Genders = make([]stats.GenderAverages, len(d.Genders))
	for i, g := range d.Genders {
		out.Genders[i] = g.Rounded(KPIPrecision)
	}

	if d.Correlations != nil {
		out.Correlations = d.Correlations.Rounded(precision)
	}
	return &out
}

// DashboardService assembles dashboards from the record store
type DashboardService struct {
	store    *store.Store
	sessions *session.Manager
	logger   *internal.Logger
	group    student.Attribute
	subjects []student.Subject
}

// NewDashboardService creates a dashboard service grouping box plots by
// parental education over every subject
func NewDashboardService(st *store.Store, sessions *session.Manager, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{
		store:    st,
		sessions: sessions,
		logger:   logger.With("Dashboard"),
		group:    student.AttributeParentalEducation,
		subjects: student.Subjects,
	}
}

// Sessions exposes the session manager
func (s *DashboardService) Sessions() *session.Manager {
	return s.sessions
}

// Store exposes the record store
func (s *DashboardService) Store() *store.Store {
	return s.store
}

// Build computes the dashboard for filter in a throwaway session
func (s *DashboardService) Build(ctx context.Context, filter student.Filter) (*Dashboard, error) {
	return s.BuildSession(ctx, session.New(s.store, session.Options{Logger: s.logger}), filter)
}

// BuildSession applies filter to sess and assembles every section from the one
// view that filter selected. With fewer than two matching records the
// correlation section is left out and CorrelationNote says why.
func (s *DashboardService) BuildSession(ctx context.Context, sess *session.Session, filter student.Filter) (*Dashboard, error) {
	start := time.Now()
	v, err := sess.Apply(ctx, filter)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Filter:      v.Filter,
		Snapshot:    v.Snapshot,
		RecordCount: len(v.Records),
		GeneratedAt: time.Now().UTC(),
	}

	if d.KPIs, err = sess.KPIs(v, s.subjects); err != nil {
		return nil, fmt.Errorf("kpis: %w", err)
	}
	if d.Summaries, err = sess.Summaries(v, s.group, s.subjects); err != nil {
		return nil, fmt.Errorf("summaries: %w", err)
	}
	if d.Summaries == nil {
		d.Summaries = []stats.GroupSummary{}
	}
	if d.Genders, err = sess.Genders(v, s.subjects); err != nil {
		return nil, fmt.Errorf("gender comparison: %w", err)
	}
	if d.Demographics, err = sess.Demographics(v); err != nil {
		return nil, fmt.Errorf("demographics: %w", err)
	}

	if len(v.Records) < analysis.MinCorrelationN {
		d.CorrelationNote = fmt.Sprintf("correlation needs at least %d students, filter matched %d", analysis.MinCorrelationN, len(v.Records))
	} else if d.Correlations, err = sess.Correlations(v, s.subjects); err != nil {
		return nil, fmt.Errorf("correlations: %w", err)
	}

	s.logger.Debug("built dashboard for %s (%d records) in %v", d.Filter.Key(), d.RecordCount, time.Since(start))
	return d, nil
}
