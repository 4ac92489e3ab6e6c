package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents a complete sheet or CSV file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// columnAliases maps each record field onto the header spellings accepted for
// it. The Kaggle export uses the long lower-case names.
var columnAliases = map[string][]string{
	"id":                {"id", "student_id", "student id"},
	"gender":            {"gender", "sex"},
	"parentalEducation": {"parentaleducation", "parental_education", "parental level of education", "parental education"},
	"testPrep":          {"testprep", "test_prep", "test preparation course", "test preparation"},
	"math":              {"mathscore", "math_score", "math score", "math"},
	"reading":           {"readingscore", "reading_score", "reading score", "reading"},
	"writing":           {"writingscore", "writing_score", "writing score", "writing"},
}
