package analysis

import (
	"fmt"
	"math"
	"sort"

	"exampulse/domain/core"
	"exampulse/domain/stats"
	"exampulse/domain/student"

	mstats "github.com/montanaflynn/stats"
)

// Quantile returns the p-quantile of an ascending slice by linear
// interpolation between the two nearest ranks (rank = p*(n-1)).
func Quantile(sorted []float64, p float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return 0, core.NewInsufficientDataError(0, 1)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: quantile %v outside [0, 1]", core.ErrPrecondition, p)
	}

	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}

// Summarize partitions records by group and computes a five-number summary for
// each requested subject. Buckets follow the attribute's canonical order and
// empty buckets are omitted.
func Summarize(records []student.Record, group student.Attribute, series []student.Subject) ([]stats.GroupSummary, error) {
	if !group.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownAttribute, string(group))
	}
	if err := checkSeries(series); err != nil {
		return nil, err
	}

	domain := group.Domain()
	buckets := make([][]student.Record, len(domain))
	for _, r := range records {
		idx, err := group.Index(group.Value(r))
		if err != nil {
			return nil, err
		}
		buckets[idx] = append(buckets[idx], r)
	}

	var out []stats.GroupSummary
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		for _, s := range series {
			summary, err := summarizeBucket(SubjectValues(bucket, s))
			if err != nil {
				return nil, fmt.Errorf("summarize %s=%s %s: %w", group, domain[i], s, err)
			}
			summary.GroupAttribute = group
			summary.GroupKey = domain[i]
			summary.Series = s
			out = append(out, summary)
		}
	}
	return out, nil
}

func summarizeBucket(values []float64) (stats.GroupSummary, error) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var (
		g   = stats.GroupSummary{Count: len(sorted)}
		err error
	)
	if g.Q1, err = Quantile(sorted, 0.25); err != nil {
		return g, err
	}
	if g.Median, err = Quantile(sorted, 0.5); err != nil {
		return g, err
	}
	if g.Q3, err = Quantile(sorted, 0.75); err != nil {
		return g, err
	}

	lo, err := mstats.Min(sorted)
	if err != nil {
		return g, err
	}
	hi, err := mstats.Max(sorted)
	if err != nil {
		return g, err
	}
	g.Min = stats.Clamp(lo, student.MinScore, student.MaxScore)
	g.Max = stats.Clamp(hi, student.MinScore, student.MaxScore)
	return g, nil
}

// Average is the arithmetic mean of a subject. An empty record list averages
// to 0 so an empty view renders as zero rather than NaN; a subject that is not
// a score field is an error.
func Average(records []student.Record, subject student.Subject) (float64, error) {
	if !subject.Valid() {
		return 0, fmt.Errorf("%w: %q", core.ErrNonNumericAttribute, string(subject))
	}
	if len(records) == 0 {
		return 0, nil
	}
	return mstats.Mean(SubjectValues(records, subject))
}

// ClassifyTrend bands an average: above 70 is up, below 50 is down.
// This is a display heuristic over one number, not a time-series trend.
func ClassifyTrend(average float64) stats.Trend {
	switch {
	case average > stats.TrendUpAbove:
		return stats.TrendUp
	case average < stats.TrendDownBelow:
		return stats.TrendDown
	default:
		return stats.TrendNeutral
	}
}

// Trend classifies a subject's average over records
func Trend(records []student.Record, subject student.Subject) (stats.Trend, error) {
	avg, err := Average(records, subject)
	if err != nil {
		return "", err
	}
	return ClassifyTrend(avg), nil
}

// KPIs builds one headline card per subject, in subject order
func KPIs(records []student.Record, subjects []student.Subject) ([]stats.KPI, error) {
	if err := checkSeries(subjects); err != nil {
		return nil, err
	}
	out := make([]stats.KPI, 0, len(subjects))
	for _, s := range subjects {
		avg, err := Average(records, s)
		if err != nil {
			return nil, err
		}
		out = append(out, stats.KPI{Subject: s, Average: avg, Trend: ClassifyTrend(avg)})
	}
	return out, nil
}

// CompareGenders averages each subject separately for male and female records
func CompareGenders(records []student.Record, subjects []student.Subject) ([]stats.GenderAverages, error) {
	if err := checkSeries(subjects); err != nil {
		return nil, err
	}
	var male, female []student.Record
	for _, r := range records {
		switch r.Gender {
		case student.GenderMale:
			male = append(male, r)
		case student.GenderFemale:
			female = append(female, r)
		}
	}

	out := make([]stats.GenderAverages, 0, len(subjects))
	for _, s := range subjects {
		m, err := Average(male, s)
		if err != nil {
			return nil, err
		}
		f, err := Average(female, s)
		if err != nil {
			return nil, err
		}
		out = append(out, stats.GenderAverages{Subject: s, Male: m, Female: f})
	}
	return out, nil
}

// checkSeries rejects an empty subject list or any non-score field
func checkSeries(series []student.Subject) error {
	if len(series) == 0 {
		return core.ErrNoSeries
	}
	for _, s := range series {
		if !s.Valid() {
			return fmt.Errorf("%w: %q", core.ErrNonNumericAttribute, string(s))
		}
	}
	return nil
}

// SubjectValues extracts one subject's scores in record order
func SubjectValues(records []student.Record, subject student.Subject) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = subject.Score(r)
	}
	return out
}
