package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"exampulse/domain/core"
	"exampulse/domain/stats"
	"exampulse/domain/student"
	"exampulse/internal"
	"exampulse/internal/analysis"
	"exampulse/internal/metrics"
	"exampulse/internal/store"
)

// Options tune a session
type Options struct {
	CacheEnabled bool
	Logger       *internal.Logger
	Metrics      *metrics.Metrics
}

// Session is the single owner of one viewer's filter and the results derived
// from it. Every derived value is recomputed from the filtered records unless
// it is already memoized for its (snapshot, filter, attributes) key.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	store   *store.Store
	opts    Options
	logger  *internal.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	filter   student.Filter
	snapshot core.SnapshotID
	records  []student.Record
	memo     map[memoKey]interface{}
	lastUsed time.Time
}

type memoKey struct {
	kind     string
	snapshot core.SnapshotID
	filter   string
	attrs    string
}

// New creates a session over st with the pass-through filter
func New(st *store.Store, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	now := time.Now()
	return &Session{
		ID:        core.NewSessionID(),
		CreatedAt: now,
		store:     st,
		opts:      opts,
		logger:    logger.With("Session"),
		metrics:   opts.Metrics,
		filter:    student.NoFilter,
		memo:      make(map[memoKey]interface{}),
		lastUsed:  now,
	}
}

// Filter returns the active filter
func (s *Session) Filter() student.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// LastUsed reports when the session last served a request
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// View is the record list one filter selected from one snapshot. Derived
// results are computed from a View, never from the session's current filter,
// so concurrent requests on a session cannot mix filters.
type View struct {
	Records  []student.Record
	Filter   student.Filter
	Snapshot core.SnapshotID
}

// Apply validates and activates f and returns the view it selects
func (s *Session) Apply(ctx context.Context, f student.Filter) (View, error) {
	if err := f.Validate(); err != nil {
		return View{}, err
	}
	all, err := s.store.Load(ctx)
	if err != nil {
		return View{}, err
	}
	snapshot := s.store.SnapshotID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if snapshot != s.snapshot {
		if s.snapshot != "" {
			s.logger.Debug("snapshot changed %s -> %s, dropping %d memo entries", s.snapshot, snapshot, len(s.memo))
		}
		s.memo = make(map[memoKey]interface{})
		s.snapshot = snapshot
	} else if s.records != nil && f.Key() == s.filter.Key() {
		return View{Records: s.records, Filter: s.filter, Snapshot: snapshot}, nil
	}

	s.filter = f
	s.records = store.Apply(all, f)
	s.logger.Trace("session %s filter %s matched %d records", s.ID, f.Key(), len(s.records))
	return View{Records: s.records, Filter: f, Snapshot: snapshot}, nil
}

// Current returns the view of the active filter
func (s *Session) Current(ctx context.Context) (View, error) {
	return s.Apply(ctx, s.Filter())
}

// Summaries returns box-plot summaries of subjects grouped by group
func (s *Session) Summaries(v View, group student.Attribute, subjects []student.Subject) ([]stats.GroupSummary, error) {
	out, err := s.memoize(v, "summaries", attrKey(string(group), subjects), func(records []student.Record) (interface{}, error) {
		return analysis.Summarize(records, group, subjects)
	})
	if err != nil {
		return nil, err
	}
	return out.([]stats.GroupSummary), nil
}

// Correlations returns the subject correlation matrix
func (s *Session) Correlations(v View, subjects []student.Subject) (*stats.CorrelationMatrix, error) {
	out, err := s.memoize(v, "correlations", attrKey("", subjects), func(records []student.Record) (interface{}, error) {
		return analysis.CorrelateSubjects(records, subjects)
	})
	if err != nil {
		return nil, err
	}
	return out.(*stats.CorrelationMatrix), nil
}

// KPIs returns the headline cards
func (s *Session) KPIs(v View, subjects []student.Subject) ([]stats.KPI, error) {
	out, err := s.memoize(v, "kpis", attrKey("", subjects), func(records []student.Record) (interface{}, error) {
		return analysis.KPIs(records, subjects)
	})
	if err != nil {
		return nil, err
	}
	return out.([]stats.KPI), nil
}

// Genders returns the per-gender subject averages
func (s *Session) Genders(v View, subjects []student.Subject) ([]stats.GenderAverages, error) {
	out, err := s.memoize(v, "gender", attrKey("", subjects), func(records []student.Record) (interface{}, error) {
		return analysis.CompareGenders(records, subjects)
	})
	if err != nil {
		return nil, err
	}
	return out.([]stats.GenderAverages), nil
}

// Demographics returns the record counts of the view
func (s *Session) Demographics(v View) (stats.Demographics, error) {
	out, err := s.memoize(v, "demographics", "", func(records []student.Record) (interface{}, error) {
		return analysis.Demographics(records), nil
	})
	if err != nil {
		return stats.Demographics{}, err
	}
	return out.(stats.Demographics), nil
}

func (s *Session) memoize(v View, kind, attrs string, compute func([]student.Record) (interface{}, error)) (interface{}, error) {
	key := memoKey{kind: kind, snapshot: v.Snapshot, filter: v.Filter.Key(), attrs: attrs}

	if s.opts.CacheEnabled {
		s.mu.Lock()
		cached, ok := s.memo[key]
		s.mu.Unlock()
		s.metrics.MemoLookup(ok)
		if ok {
			return cached, nil
		}
	}

	result, err := compute(v.Records)
	if err != nil {
		return nil, err
	}
	s.metrics.Computed(kind)

	if s.opts.CacheEnabled {
		s.mu.Lock()
		// a reload may have replaced the snapshot while computing
		if s.snapshot == v.Snapshot {
			s.memo[key] = result
		}
		s.mu.Unlock()
	}
	return result, nil
}

// MemoSize reports the number of memoized results
func (s *Session) MemoSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memo)
}

// attrKey is order-sensitive in subjects because result ordering follows the request
func attrKey(group string, subjects []student.Subject) string {
	parts := make([]string, len(subjects))
	for i, sub := range subjects {
		parts[i] = string(sub)
	}
	return group + "|" + strings.Join(parts, ",")
}

// Info is the public view of a session
type Info struct {
	ID        core.SessionID  `json:"id"`
	Filter    student.Filter  `json:"filter"`
	Snapshot  core.SnapshotID `json:"snapshot,omitempty"`
	Records   int             `json:"records"`
	MemoSize  int             `json:"memoSize"`
	CreatedAt time.Time       `json:"createdAt"`
	LastUsed  time.Time       `json:"lastUsed"`
}

// Info describes the session
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.ID,
		Filter:    s.filter,
		Snapshot:  s.snapshot,
		Records:   len(s.records),
		MemoSize:  len(s.memo),
		CreatedAt: s.CreatedAt,
		LastUsed:  s.lastUsed,
	}
}

// Manager tracks live sessions and evicts idle ones
type Manager struct {
	store *store.Store
	opts  Options
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[core.SessionID]*Session
}

// DefaultTTL is how long an unused session is kept
const DefaultTTL = 30 * time.Minute

// NewManager creates a session manager
func NewManager(st *store.Store, opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:    st,
		opts:     opts,
		ttl:      ttl,
		sessions: make(map[core.SessionID]*Session),
	}
}

// Create starts a new session
func (m *Manager) Create() *Session {
	s := New(m.store, m.opts)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.Sweep(time.Now())
	return s
}

// Get returns a live session
func (m *Manager) Get(id core.SessionID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Sweep drops sessions idle for longer than the ttl and returns how many
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastUsed()) > m.ttl {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// IDs lists live session ids in sorted order
func (m *Manager) IDs() []core.SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]core.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
