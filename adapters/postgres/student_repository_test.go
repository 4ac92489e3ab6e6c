package postgres

import (
	"testing"

	"exampulse/domain/core"
	"exampulse/domain/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRow_ToRecord(t *testing.T) {
	row := studentRow{
		ID:                "7",
		Gender:            "Female",
		ParentalEducation: "Bachelors Degree",
		TestPrep:          "complete",
		MathScore:         88,
		ReadingScore:      91.5,
		WritingScore:      93,
	}

	rec, err := row.toRecord()
	require.NoError(t, err)
	assert.Equal(t, student.GenderFemale, rec.Gender)
	assert.Equal(t, student.EducationBachelors, rec.ParentalEducation)
	assert.Equal(t, student.TestPrepCompleted, rec.TestPrep)
	assert.Equal(t, 91.5, rec.ReadingScore)
}

func TestStudentRow_ToRecordRejectsUnknownValues(t *testing.T) {
	row := studentRow{ID: "9", Gender: "male", ParentalEducation: "doctorate", TestPrep: "none"}

	_, err := row.toRecord()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownValue)
	assert.Contains(t, err.Error(), "student 9")
}

func TestFromRecord_SurvivesStorage(t *testing.T) {
	rec := student.Record{
		ID:                "3",
		Gender:            student.GenderMale,
		ParentalEducation: student.EducationMasters,
		TestPrep:          student.TestPrepNone,
		MathScore:         90,
		ReadingScore:      95,
		WritingScore:      93,
	}

	row := fromRecord(rec)
	assert.Equal(t, "master's degree", row.ParentalEducation)

	back, err := row.toRecord()
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}
