package student

import (
	"fmt"
	"strings"

	"exampulse/domain/core"
)

// Score bounds shared by every subject
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Gender of an exam-taker
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders is the canonical display ordering
var Genders = []Gender{GenderMale, GenderFemale}

// ParentalEducation is the highest education level of a student's parents.
type ParentalEducation string

const (
	EducationSomeHighSchool ParentalEducation = "some high school"
	EducationHighSchool     ParentalEducation = "high school"
	EducationSomeCollege    ParentalEducation = "some college"
	EducationAssociates     ParentalEducation = "associate's degree"
	EducationBachelors      ParentalEducation = "bachelor's degree"
	EducationMasters        ParentalEducation = "master's degree"
)

// EducationLevels lists parental education in display order. Chart axes depend
// on this exact sequence; it is neither alphabetical nor insertion order.
var EducationLevels = []ParentalEducation{
	EducationSomeHighSchool,
	EducationHighSchool,
	EducationSomeCollege,
	EducationAssociates,
	EducationBachelors,
	EducationMasters,
}

// TestPrep records whether the student completed a preparation course
type TestPrep string

const (
	TestPrepNone      TestPrep = "none"
	TestPrepCompleted TestPrep = "completed"
)

// TestPrepStatuses is the canonical display ordering
var TestPrepStatuses = []TestPrep{TestPrepNone, TestPrepCompleted}

// Record is one exam-taker. Records are values and are never mutated after load.
type Record struct {
	ID                string            `json:"id" db:"id"`
	Gender            Gender            `json:"gender" db:"gender"`
	ParentalEducation ParentalEducation `json:"parentalEducation" db:"parental_education"`
	TestPrep          TestPrep          `json:"testPrep" db:"test_prep"`
	MathScore         float64           `json:"mathScore" db:"math_score"`
	ReadingScore      float64           `json:"readingScore" db:"reading_score"`
	WritingScore      float64           `json:"writingScore" db:"writing_score"`
}

// Validate checks identity and categorical fields. Scores are not checked here;
// see OutOfRangeSubjects.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return core.NewInvalidRecordError(r.ID, "empty id")
	}
	if _, err := AttributeGender.Index(string(r.Gender)); err != nil {
		return core.NewInvalidRecordError(r.ID, err.Error())
	}
	if _, err := AttributeParentalEducation.Index(string(r.ParentalEducation)); err != nil {
		return core.NewInvalidRecordError(r.ID, err.Error())
	}
	if _, err := AttributeTestPrep.Index(string(r.TestPrep)); err != nil {
		return core.NewInvalidRecordError(r.ID, err.Error())
	}
	return nil
}

// OutOfRangeSubjects returns the subjects whose score lies outside [0, 100].
func (r Record) OutOfRangeSubjects() []Subject {
	var out []Subject
	for _, s := range Subjects {
		v := s.Score(r)
		if v < MinScore || v > MaxScore {
			out = append(out, s)
		}
	}
	return out
}

// ParseGender normalizes free text into a Gender
func ParseGender(s string) (Gender, error) {
	v, err := AttributeGender.Normalize(s)
	return Gender(v), err
}

// ParseParentalEducation normalizes free text into a ParentalEducation
func ParseParentalEducation(s string) (ParentalEducation, error) {
	v, err := AttributeParentalEducation.Normalize(s)
	return ParentalEducation(v), err
}

// ParseTestPrep normalizes free text into a TestPrep
func ParseTestPrep(s string) (TestPrep, error) {
	v, err := AttributeTestPrep.Normalize(s)
	return TestPrep(v), err
}

func unknownValue(attr Attribute, value string) error {
	return fmt.Errorf("%w: %q is not a valid %s", core.ErrUnknownValue, value, attr)
}
