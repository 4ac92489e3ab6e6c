package analysis

import (
	"fmt"
	"math"

	"exampulse/domain/core"
	"exampulse/domain/stats"
	"exampulse/domain/student"

	gonumstat "gonum.org/v1/gonum/stat"
)

// MinCorrelationN is the smallest series length with a defined correlation
const MinCorrelationN = 2

// NamedSeries is one labelled numeric series for a correlation matrix
type NamedSeries struct {
	Name   string
	Values []float64
}

// Correlate returns the Pearson product-moment correlation of a and b at full
// precision. Both series must have the same length of at least two. A series
// with zero variance yields an undefined coefficient rather than an error.
func Correlate(a, b []float64) (stats.Coefficient, error) {
	if len(a) != len(b) {
		return stats.Undefined(), core.NewLengthMismatchError(len(a), len(b))
	}
	if len(a) < MinCorrelationN {
		return stats.Undefined(), core.NewInsufficientDataError(len(a), MinCorrelationN)
	}

	meanA := gonumstat.Mean(a, nil)
	meanB := gonumstat.Mean(b, nil)

	var numerator, denomA, denomB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		numerator += da * db
		denomA += da * da
		denomB += db * db
	}

	if denomA == 0 || denomB == 0 {
		return stats.Undefined(), nil
	}

	r := numerator / math.Sqrt(denomA*denomB)
	if math.IsNaN(r) {
		return stats.Undefined(), nil
	}
	// floating error can push |r| a hair past 1
	return stats.DefinedCoefficient(stats.Clamp(r, -1, 1)), nil
}

// BuildMatrix correlates every pair of series. Each unordered pair is computed
// once and mirrored; the diagonal is 1 without computing.
func BuildMatrix(series []NamedSeries) (*stats.CorrelationMatrix, error) {
	names := make([]string, len(series))
	seen := make(map[string]struct{}, len(series))
	for i, s := range series {
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate series %q", core.ErrPrecondition, s.Name)
		}
		seen[s.Name] = struct{}{}
		names[i] = s.Name

		if i > 0 && len(s.Values) != len(series[0].Values) {
			return nil, fmt.Errorf("series %q: %w", s.Name, core.NewLengthMismatchError(len(series[0].Values), len(s.Values)))
		}
	}

	m := stats.NewCorrelationMatrix(names)
	for i := range series {
		for j := i + 1; j < len(series); j++ {
			c, err := Correlate(series[i].Values, series[j].Values)
			if err != nil {
				return nil, fmt.Errorf("correlate %s/%s: %w", series[i].Name, series[j].Name, err)
			}
			m.Set(i, j, c)
		}
	}
	return m, nil
}

// SubjectSeries extracts one named series per subject, named by record field
func SubjectSeries(records []student.Record, subjects []student.Subject) ([]NamedSeries, error) {
	out := make([]NamedSeries, 0, len(subjects))
	for _, s := range subjects {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %q", core.ErrNonNumericAttribute, string(s))
		}
		out = append(out, NamedSeries{Name: s.Field(), Values: SubjectValues(records, s)})
	}
	return out, nil
}

// CorrelateSubjects builds the subject correlation matrix for records
func CorrelateSubjects(records []student.Record, subjects []student.Subject) (*stats.CorrelationMatrix, error) {
	series, err := SubjectSeries(records, subjects)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, core.ErrNoSeries
	}
	return BuildMatrix(series)
}
