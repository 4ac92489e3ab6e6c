package session

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"exampulse/adapters/fixture"
	"exampulse/domain/core"
	"exampulse/domain/student"
	"exampulse/internal"
	"exampulse/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *internal.Logger {
	l := internal.NewLogger(internal.LogLevelTrace)
	l.SetOutput(log.New(&bytes.Buffer{}, "", 0))
	return l
}

func newSession(t *testing.T, cache bool) (*Session, *store.Store) {
	t.Helper()
	st := store.New(fixture.NewSource(0), store.WithLogger(quietLogger()))
	return New(st, Options{CacheEnabled: cache, Logger: quietLogger()}), st
}

func TestSession_DefaultsToAll(t *testing.T) {
	s, _ := newSession(t, true)
	assert.True(t, s.Filter().IsAll())

	v, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Records, 24)
	assert.True(t, v.Filter.IsAll())
	assert.NotEmpty(t, v.Snapshot)
}

func TestSession_Apply(t *testing.T) {
	s, _ := newSession(t, true)
	ctx := context.Background()

	v, err := s.Apply(ctx, student.EducationFilter(student.EducationMasters))
	require.NoError(t, err)
	assert.Len(t, v.Records, 4)
	assert.Equal(t, "parentalEducation=master's degree", v.Filter.Key())
	assert.Equal(t, "parentalEducation=master's degree", s.Filter().Key())

	summaries, err := s.Summaries(v, student.AttributeParentalEducation, student.Subjects)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "master's degree", summaries[0].GroupKey)

	v, err = s.Apply(ctx, student.NoFilter)
	require.NoError(t, err)
	assert.Len(t, v.Records, 24)
}

func TestSession_ApplyRejectsInvalidFilter(t *testing.T) {
	s, _ := newSession(t, true)

	_, err := s.Apply(context.Background(), student.Filter{Attribute: student.AttributeGender, Value: "robot"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownValue)
	assert.True(t, s.Filter().IsAll())
}

func TestSession_ViewOutlivesFilterChange(t *testing.T) {
	s, _ := newSession(t, true)
	ctx := context.Background()

	masters, err := s.Apply(ctx, student.EducationFilter(student.EducationMasters))
	require.NoError(t, err)
	_, err = s.Apply(ctx, student.NoFilter)
	require.NoError(t, err)

	d, err := s.Demographics(masters)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Students)

	kpis, err := s.KPIs(masters, student.Subjects)
	require.NoError(t, err)
	assert.InDelta(t, 90.5, kpis[0].Average, 1e-9)
}

func TestSession_ConcurrentFiltersStayConsistent(t *testing.T) {
	s, _ := newSession(t, true)
	ctx := context.Background()
	filters := []student.Filter{student.NoFilter, student.EducationFilter(student.EducationMasters)}
	want := map[string]int{filters[0].Key(): 24, filters[1].Key(): 4}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		f := filters[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Apply(ctx, f)
			if !assert.NoError(t, err) {
				return
			}
			d, err := s.Demographics(v)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, f.Key(), v.Filter.Key())
			assert.Equal(t, want[f.Key()], len(v.Records))
			assert.Equal(t, want[f.Key()], d.Students)
		}()
	}
	wg.Wait()
}

func TestSession_Memoizes(t *testing.T) {
	s, _ := newSession(t, true)
	ctx := context.Background()

	v, err := s.Current(ctx)
	require.NoError(t, err)
	first, err := s.Correlations(v, student.Subjects)
	require.NoError(t, err)
	second, err := s.Correlations(v, student.Subjects)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.MemoSize())

	_, err = s.KPIs(v, student.Subjects)
	require.NoError(t, err)
	_, err = s.Genders(v, student.Subjects)
	require.NoError(t, err)
	_, err = s.Demographics(v)
	require.NoError(t, err)
	assert.Equal(t, 4, s.MemoSize())

	hs, err := s.Apply(ctx, student.EducationFilter(student.EducationHighSchool))
	require.NoError(t, err)
	third, err := s.Correlations(hs, student.Subjects)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestSession_CacheDisabled(t *testing.T) {
	s, _ := newSession(t, false)

	v, err := s.Current(context.Background())
	require.NoError(t, err)
	first, err := s.Correlations(v, student.Subjects)
	require.NoError(t, err)
	second, err := s.Correlations(v, student.Subjects)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, s.MemoSize())
}

func TestSession_ReloadInvalidatesMemo(t *testing.T) {
	s, st := newSession(t, true)
	ctx := context.Background()

	v, err := s.Current(ctx)
	require.NoError(t, err)
	_, err = s.KPIs(v, student.Subjects)
	require.NoError(t, err)
	require.Equal(t, 1, s.MemoSize())

	_, err = st.Retry(ctx)
	require.NoError(t, err)

	fresh, err := s.Current(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, v.Snapshot, fresh.Snapshot)
	assert.Equal(t, 0, s.MemoSize())

	_, err = s.Demographics(fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, s.MemoSize())
	assert.Equal(t, fresh.Snapshot, s.Info().Snapshot)

	// a view from the old snapshot is still computed but not memoized
	_, err = s.Genders(v, student.Subjects)
	require.NoError(t, err)
	assert.Equal(t, 1, s.MemoSize())
}

func TestSession_NonScoreSubject(t *testing.T) {
	s, _ := newSession(t, true)

	v, err := s.Current(context.Background())
	require.NoError(t, err)
	_, err = s.KPIs(v, []student.Subject{"gender"})
	assert.ErrorIs(t, err, core.ErrNonNumericAttribute)
	assert.Equal(t, 0, s.MemoSize())
}

func TestSession_Demographics(t *testing.T) {
	s, _ := newSession(t, true)

	v, err := s.Apply(context.Background(), student.Filter{Attribute: student.AttributeTestPrep, Value: "completed"})
	require.NoError(t, err)
	d, err := s.Demographics(v)
	require.NoError(t, err)
	assert.Equal(t, 13, d.Students)
	assert.Equal(t, 13, d.TestPrepCompleted)
}

func TestSession_Info(t *testing.T) {
	s, _ := newSession(t, true)
	_, err := s.Current(context.Background())
	require.NoError(t, err)

	info := s.Info()
	assert.Equal(t, s.ID, info.ID)
	assert.Equal(t, 24, info.Records)
	assert.NotEmpty(t, info.Snapshot)
}

func TestManager(t *testing.T) {
	st := store.New(fixture.NewSource(0), store.WithLogger(quietLogger()))
	m := NewManager(st, Options{CacheEnabled: true, Logger: quietLogger()}, time.Minute)

	s := m.Create()
	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []core.SessionID{s.ID}, m.IDs())

	_, ok = m.Get(core.NewSessionID())
	assert.False(t, ok)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, m.Len())
}
