package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"exampulse/domain/core"
	"exampulse/domain/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVCanonicalHeaders(t *testing.T) {
	path := writeFile(t, "students.csv",
		"id,gender,parentalEducation,testPrep,mathScore,readingScore,writingScore\n"+
			"a1,male,bachelor's degree,completed,88,90,93\n"+
			"a2,female,some high school,none,60,50,52\n")

	reader := NewDataReader(path)
	assert.Equal(t, "csv:students.csv", reader.Name())

	records, err := reader.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, student.Record{
		ID:                "a1",
		Gender:            student.GenderMale,
		ParentalEducation: student.EducationBachelors,
		TestPrep:          student.TestPrepCompleted,
		MathScore:         88,
		ReadingScore:      90,
		WritingScore:      93,
	}, records[0])
	assert.Equal(t, student.EducationSomeHighSchool, records[1].ParentalEducation)
}

func TestDataReader_CSVKaggleHeadersGenerateIDs(t *testing.T) {
	path := writeFile(t, "exams.csv",
		"\"gender\",\"race/ethnicity\",\"parental level of education\",\"lunch\",\"test preparation course\",\"math score\",\"reading score\",\"writing score\"\n"+
			"\"female\",\"group B\",\"master's degree\",\"standard\",\"none\",\"90\",\"95\",\"93\"\n"+
			"\n"+
			"\"male\",\"group C\",\"high school\",\"free/reduced\",\"completed\",\"62\",\"64\",\"60\"\n")

	records, err := NewDataReader(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "2", records[1].ID)
	assert.Equal(t, student.EducationMasters, records[0].ParentalEducation)
	assert.Equal(t, student.TestPrepCompleted, records[1].TestPrep)
	assert.Equal(t, 64.0, records[1].ReadingScore)
}

func TestDataReader_MissingColumn(t *testing.T) {
	path := writeFile(t, "bad.csv", "gender,math score\nmale,70\n")

	_, err := NewDataReader(path).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestDataReader_BadCells(t *testing.T) {
	header := "gender,parental level of education,test preparation course,math score,reading score,writing score\n"

	t.Run("unknown category", func(t *testing.T) {
		path := writeFile(t, "bad.csv", header+"robot,high school,none,70,70,70\n")
		_, err := NewDataReader(path).Fetch(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnknownValue)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("non-numeric score", func(t *testing.T) {
		path := writeFile(t, "bad.csv", header+"male,high school,none,seventy,70,70\n")
		_, err := NewDataReader(path).Fetch(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidRecord)
	})
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadData()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDataReader_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "gender,math score\n")
	_, err := NewDataReader(path).ReadData()
	require.Error(t, err)
}

func TestDataReader_CancelledContext(t *testing.T) {
	path := writeFile(t, "students.csv", "gender\nmale\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDataReader(path).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataReader_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"id", "gender", "parental_education", "test_prep", "math_score", "reading_score", "writing_score"},
		{"x1", "female", "associate's degree", "completed", 76, 87, 85},
		{"x2", "male", "some college", "none", 69, 70, 68},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "students.xlsx")
	require.NoError(t, f.SaveAs(path))

	reader := NewDataReader(path)
	assert.Equal(t, "xlsx:students.xlsx", reader.Name())

	records, err := reader.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "x1", records[0].ID)
	assert.Equal(t, student.EducationAssociates, records[0].ParentalEducation)
	assert.Equal(t, 87.0, records[0].ReadingScore)
	assert.Equal(t, student.EducationSomeCollege, records[1].ParentalEducation)
}
