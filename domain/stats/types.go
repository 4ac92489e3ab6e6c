package stats

import (
	"encoding/json"
	"math"

	"exampulse/domain/student"
)

// GroupSummary is the five-number summary of one subject within one category.
// Derived on every query and never persisted.
type GroupSummary struct {
	GroupAttribute student.Attribute `json:"groupAttribute"`
	GroupKey       string            `json:"groupKey"`
	Series         student.Subject   `json:"seriesKey"`
	Q1             float64           `json:"q1"`
	Median         float64           `json:"median"`
	Q3             float64           `json:"q3"`
	Min            float64           `json:"min"`
	Max            float64           `json:"max"`
	Count          int               `json:"count"`
}

// IQR returns the interquartile range
func (g GroupSummary) IQR() float64 {
	return g.Q3 - g.Q1
}

// Rounded returns a copy with the five numbers rounded for display
func (g GroupSummary) Rounded(places int) GroupSummary {
	g.Q1 = Round(g.Q1, places)
	g.Median = Round(g.Median, places)
	g.Q3 = Round(g.Q3, places)
	g.Min = Round(g.Min, places)
	g.Max = Round(g.Max, places)
	return g
}

// Coefficient is a correlation value that may be undefined. A zero-variance
// series has no Pearson correlation; that case is carried as Defined=false
// instead of NaN so it cannot leak into rendering.
type Coefficient struct {
	Value   float64
	Defined bool
}

// DefinedCoefficient builds a defined coefficient
func DefinedCoefficient(v float64) Coefficient {
	return Coefficient{Value: v, Defined: true}
}

// Undefined is the fallback for 0/0 correlations
func Undefined() Coefficient {
	return Coefficient{}
}

// Rounded returns the coefficient rounded for display
func (c Coefficient) Rounded(places int) Coefficient {
	if !c.Defined {
		return c
	}
	return DefinedCoefficient(Round(c.Value, places))
}

// MarshalJSON encodes undefined coefficients as null
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number or null
func (c *Coefficient) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = DefinedCoefficient(v)
	return nil
}

// Trend buckets an average into a display band. It is a presentation
// heuristic over a single average, not a trend over time.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Trend band thresholds
const (
	TrendUpAbove   = 70.0
	TrendDownBelow = 50.0
)

// KPI is one headline card: a subject's average and its band
type KPI struct {
	Subject student.Subject `json:"subject"`
	Average float64         `json:"average"`
	Trend   Trend           `json:"trend"`
}

// Rounded returns a copy with the average rounded for display
func (k KPI) Rounded(places int) KPI {
	k.Average = Round(k.Average, places)
	return k
}

// GenderAverages compares a subject's average between genders
type GenderAverages struct {
	Subject student.Subject `json:"subject"`
	Male    float64         `json:"male"`
	Female  float64         `json:"female"`
}

// Rounded returns a copy with both averages rounded for display
func (g GenderAverages) Rounded(places int) GenderAverages {
	g.Male = Round(g.Male, places)
	g.Female = Round(g.Female, places)
	return g
}

// Demographics counts the records behind a view
type Demographics struct {
	Students          int `json:"students"`
	EducationLevels   int `json:"educationLevels"`
	Male              int `json:"male"`
	Female            int `json:"female"`
	TestPrepCompleted int `json:"testPrepCompleted"`
}

// Round rounds half away from zero to the given number of decimal places
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
