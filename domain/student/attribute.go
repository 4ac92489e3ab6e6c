package student

import (
	"fmt"
	"strings"

	"exampulse/domain/core"
)

// Attribute names a categorical dimension of a Record
type Attribute string

const (
	AttributeGender            Attribute = "gender"
	AttributeParentalEducation Attribute = "parentalEducation"
	AttributeTestPrep          Attribute = "testPrep"
)

// Attributes lists every categorical dimension
var Attributes = []Attribute{AttributeGender, AttributeParentalEducation, AttributeTestPrep}

// ParseAttribute accepts the canonical name or a common alias.
func ParseAttribute(s string) (Attribute, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gender", "sex":
		return AttributeGender, nil
	case "parentaleducation", "parental_education", "education", "parental level of education":
		return AttributeParentalEducation, nil
	case "testprep", "test_prep", "prep", "test preparation course":
		return AttributeTestPrep, nil
	}
	if _, err := ParseSubject(s); err == nil {
		return "", fmt.Errorf("%w: %q is a numeric field", core.ErrUnknownAttribute, s)
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownAttribute, s)
}

// Valid reports whether a is one of the known categorical dimensions
func (a Attribute) Valid() bool {
	for _, known := range Attributes {
		if a == known {
			return true
		}
	}
	return false
}

// Domain returns the fixed ordered set of values for the dimension.
func (a Attribute) Domain() []string {
	switch a {
	case AttributeGender:
		out := make([]string, len(Genders))
		for i, g := range Genders {
			out[i] = string(g)
		}
		return out
	case AttributeParentalEducation:
		out := make([]string, len(EducationLevels))
		for i, e := range EducationLevels {
			out[i] = string(e)
		}
		return out
	case AttributeTestPrep:
		out := make([]string, len(TestPrepStatuses))
		for i, p := range TestPrepStatuses {
			out[i] = string(p)
		}
		return out
	}
	return nil
}

// Value reads the dimension from a record
func (a Attribute) Value(r Record) string {
	switch a {
	case AttributeGender:
		return string(r.Gender)
	case AttributeParentalEducation:
		return string(r.ParentalEducation)
	case AttributeTestPrep:
		return string(r.TestPrep)
	}
	return ""
}

// Index returns the position of value within the attribute's domain
func (a Attribute) Index(value string) (int, error) {
	if !a.Valid() {
		return -1, fmt.Errorf("%w: %q", core.ErrUnknownAttribute, string(a))
	}
	for i, v := range a.Domain() {
		if v == value {
			return i, nil
		}
	}
	return -1, unknownValue(a, value)
}

// Normalize maps loosely formatted input (case, spacing, curly apostrophes,
// underscores) onto the canonical domain value.
func (a Attribute) Normalize(value string) (string, error) {
	key := normalizeKey(value)
	for _, v := range a.Domain() {
		if normalizeKey(v) == key {
			return v, nil
		}
	}
	if a == AttributeTestPrep && key == "complete" {
		return string(TestPrepCompleted), nil
	}
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownAttribute, string(a))
	}
	return "", unknownValue(a, value)
}

func (a Attribute) String() string { return string(a) }

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("’", "", "'", "", "_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
