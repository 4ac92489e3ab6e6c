package student

import (
	"fmt"
	"strings"

	"exampulse/domain/core"
)

// Subject is a numeric score field of a Record
type Subject string

const (
	SubjectMath    Subject = "math"
	SubjectReading Subject = "reading"
	SubjectWriting Subject = "writing"
)

// Subjects in display order
var Subjects = []Subject{SubjectMath, SubjectReading, SubjectWriting}

var subjectAccessors = map[Subject]func(Record) float64{
	SubjectMath:    func(r Record) float64 { return r.MathScore },
	SubjectReading: func(r Record) float64 { return r.ReadingScore },
	SubjectWriting: func(r Record) float64 { return r.WritingScore },
}

// ParseSubject accepts "math", "mathScore" or "math score" style names.
// Categorical field names are rejected with ErrNonNumericAttribute.
func ParseSubject(s string) (Subject, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(strings.TrimSuffix(key, "score"), " ")
	key = strings.TrimSuffix(key, "_")
	sub := Subject(key)
	if sub.Valid() {
		return sub, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrNonNumericAttribute, s)
}

// ParseSubjects parses a list, failing on the first non-numeric entry
func ParseSubjects(names []string) ([]Subject, error) {
	out := make([]Subject, 0, len(names))
	for _, n := range names {
		s, err := ParseSubject(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Valid reports whether s names a numeric score field
func (s Subject) Valid() bool {
	_, ok := subjectAccessors[s]
	return ok
}

// Score reads the subject's score from r. It panics for an invalid subject;
// callers parse untrusted names with ParseSubject first.
func (s Subject) Score(r Record) float64 {
	get, ok := subjectAccessors[s]
	if !ok {
		panic(fmt.Sprintf("student: invalid subject %q", string(s)))
	}
	return get(r)
}

// Field is the record field name the subject maps to, e.g. "mathScore".
func (s Subject) Field() string { return string(s) + "Score" }

// Label is the capitalized display name
func (s Subject) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func (s Subject) String() string { return string(s) }
