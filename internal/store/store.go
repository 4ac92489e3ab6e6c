package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"exampulse/domain/core"
	"exampulse/domain/student"
	"exampulse/internal"
	"exampulse/internal/metrics"
	"exampulse/ports"

	"golang.org/x/sync/singleflight"
)

// State is the lifecycle position of the Store
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

const DefaultLoadTimeout = 5 * time.Second

// Store owns the record list for a process. Records are fetched once; a failed
// fetch is terminal until Retry is called.
type Store struct {
	source  ports.RecordSource
	timeout time.Duration
	logger  *internal.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu       sync.RWMutex
	state    State
	records  []student.Record
	snapshot core.SnapshotID
	loadedAt time.Time
	err      error
}

// Option configures a Store
type Option func(*Store)

// WithTimeout bounds each fetch
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the store logger
func WithLogger(l *internal.Logger) Option {
	return func(s *Store) { s.logger = l.With("Store") }
}

// WithMetrics records load timings
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates an idle Store over source
func New(source ports.RecordSource, opts ...Option) *Store {
	s := &Store{
		source:  source,
		timeout: DefaultLoadTimeout,
		logger:  internal.DefaultLogger.With("Store"),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the record list, fetching it on first use. Concurrent callers
// share one fetch. After a failure every call returns the same error.
func (s *Store) Load(ctx context.Context) ([]student.Record, error) {
	s.mu.RLock()
	state, records, err := s.state, s.records, s.err
	s.mu.RUnlock()

	switch state {
	case StateReady:
		return records, nil
	case StateFailed:
		return nil, err
	}

	return s.await(ctx, false)
}

// Retry fetches again regardless of the current state. The previous record
// list keeps serving until the new one is in place, and a failed retry of a
// ready store keeps it ready with Status reporting the error. A successful
// retry produces a new snapshot id.
func (s *Store) Retry(ctx context.Context) ([]student.Record, error) {
	s.logger.Info("retrying load from %s", s.source.Name())
	return s.await(ctx, true)
}

func (s *Store) await(ctx context.Context, force bool) ([]student.Record, error) {
	ch := s.group.DoChan("load", func() (interface{}, error) {
		return s.fetch(force)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]student.Record), nil
	}
}

// fetch runs detached from any single caller's context so one impatient caller
// cannot fail the shared load; the store timeout bounds it instead.
func (s *Store) fetch(force bool) ([]student.Record, error) {
	s.mu.Lock()
	if !force && s.state == StateReady {
		records := s.records
		s.mu.Unlock()
		return records, nil
	}
	if !force && s.state == StateFailed {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}
	if s.state != StateReady {
		s.state = StateLoading
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	records, err := s.source.Fetch(ctx)
	if err == nil {
		err = s.validate(records)
	}
	elapsed := time.Since(start)
	s.metrics.ObserveLoad(s.source.Name(), elapsed, len(records), err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		loadErr := core.NewLoadError(fmt.Errorf("%s: %w", s.source.Name(), err))
		s.logger.Error("load from %s failed after %v: %v", s.source.Name(), elapsed, err)
		if s.state == StateReady {
			// a failed retry leaves the served snapshot in place
			s.err = loadErr
			return nil, loadErr
		}
		s.state = StateFailed
		s.records = nil
		s.err = loadErr
		return nil, loadErr
	}

	s.state = StateReady
	s.err = nil
	s.records = records
	s.snapshot = core.NewSnapshotID()
	s.loadedAt = time.Now()
	s.logger.Info("loaded %d records from %s in %v (snapshot %s)", len(records), s.source.Name(), elapsed, s.snapshot)
	return records, nil
}

// validate rejects duplicate ids and unknown categories. Out-of-range scores
// are kept; the aggregation engine clamps them.
func (s *Store) validate(records []student.Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return core.NewInvalidRecordError(r.ID, "duplicate id")
		}
		seen[r.ID] = struct{}{}
		if bad := r.OutOfRangeSubjects(); len(bad) > 0 {
			s.logger.Warn("record %s has out-of-range scores for %v", r.ID, bad)
		}
	}
	return nil
}

// Records returns the loaded list without fetching. The slice is shared and
// must not be modified.
func (s *Store) Records() ([]student.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateReady:
		return s.records, nil
	case StateFailed:
		return nil, s.err
	default:
		return nil, core.ErrNotLoaded
	}
}

// SnapshotID identifies the current record list; empty until loaded
func (s *Store) SnapshotID() core.SnapshotID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Status describes the store for health and session endpoints
type Status struct {
	State    State           `json:"state"`
	Source   string          `json:"source"`
	Records  int             `json:"records"`
	Snapshot core.SnapshotID `json:"snapshot,omitempty"`
	LoadedAt *time.Time      `json:"loadedAt,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Status reports the current lifecycle state
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		State:    s.state,
		Source:   s.source.Name(),
		Records:  len(s.records),
		Snapshot: s.snapshot,
	}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		st.LoadedAt = &t
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}
