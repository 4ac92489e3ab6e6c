package store

import (
	"exampulse/domain/student"
)

// Filter returns the records whose attribute equals value. The All sentinel
// returns records unchanged; any other value is normalized against the
// attribute's domain and rejected when unknown.
func Filter(records []student.Record, attr student.Attribute, value string) ([]student.Record, error) {
	f, err := student.NewFilter(attr, value)
	if err != nil {
		return nil, err
	}
	return Apply(records, f), nil
}

// Apply runs a parsed filter. The input slice is never modified.
func Apply(records []student.Record, f student.Filter) []student.Record {
	if f.IsAll() {
		return records
	}
	out := make([]student.Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParseFilter reads the textual filter forms accepted by the API and CLI
func ParseFilter(s string) (student.Filter, error) {
	return student.ParseFilter(s)
}
