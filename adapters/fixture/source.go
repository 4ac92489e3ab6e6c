package fixture

import (
	"context"
	"time"

	"exampulse/domain/student"
	"exampulse/ports"
)

// Source serves the built-in "Students Performance in Exams" sample.
// Delay simulates network latency; it is zero outside demos and tests.
type Source struct {
	Delay time.Duration
}

var _ ports.RecordSource = (*Source)(nil)

// NewSource creates a fixture source with the given artificial delay
func NewSource(delay time.Duration) *Source {
	return &Source{Delay: delay}
}

// Name identifies the source
func (s *Source) Name() string { return "fixture" }

// Fetch returns a fresh copy of the sample after the configured delay
func (s *Source) Fetch(ctx context.Context) ([]student.Record, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Students(), nil
}

// Students returns a copy of the 24-record sample
func Students() []student.Record {
	out := make([]student.Record, len(students))
	copy(out, students)
	return out
}

func rec(id string, g student.Gender, e student.ParentalEducation, p student.TestPrep, math, reading, writing float64) student.Record {
	return student.Record{
		ID:                id,
		Gender:            g,
		ParentalEducation: e,
		TestPrep:          p,
		MathScore:         math,
		ReadingScore:      reading,
		WritingScore:      writing,
	}
}

const (
	male   = student.GenderMale
	female = student.GenderFemale

	someHigh   = student.EducationSomeHighSchool
	high       = student.EducationHighSchool
	college    = student.EducationSomeCollege
	associates = student.EducationAssociates
	bachelors  = student.EducationBachelors
	masters    = student.EducationMasters

	none      = student.TestPrepNone
	completed = student.TestPrepCompleted
)

var students = []student.Record{
	rec("1", female, bachelors, completed, 72, 85, 83),
	rec("2", female, college, none, 69, 90, 88),
	rec("3", female, masters, completed, 90, 95, 93),
	rec("4", male, associates, none, 76, 78, 75),
	rec("5", male, someHigh, none, 65, 58, 52),
	rec("6", male, high, completed, 78, 72, 70),
	rec("7", female, college, completed, 85, 92, 87),
	rec("8", male, someHigh, none, 60, 50, 52),
	rec("9", male, high, none, 68, 64, 60),
	rec("10", female, bachelors, completed, 83, 90, 93),
	rec("11", female, associates, completed, 76, 87, 85),
	rec("12", male, bachelors, none, 80, 75, 72),
	rec("13", male, masters, completed, 95, 88, 92),
	rec("14", female, high, none, 62, 75, 78),
	rec("15", male, college, completed, 75, 70, 68),
	rec("16", female, someHigh, completed, 70, 65, 68),
	rec("17", male, associates, none, 72, 67, 65),
	rec("18", female, masters, none, 85, 88, 90),
	rec("19", female, high, completed, 78, 82, 85),
	rec("20", male, bachelors, completed, 88, 83, 85),
	rec("21", female, college, none, 72, 80, 82),
	rec("22", male, someHigh, completed, 68, 60, 58),
	rec("23", female, associates, none, 70, 79, 80),
	rec("24", male, masters, completed, 92, 86, 89),
}
