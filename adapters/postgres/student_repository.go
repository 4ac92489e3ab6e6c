package postgres

import (
	"context"
	"fmt"

	"exampulse/domain/student"
	"exampulse/ports"

	"github.com/jmoiron/sqlx"
)

// studentRow mirrors the students table. Categorical columns are scanned as
// plain text and normalized on the way out so hand-edited rows still load.
type studentRow struct {
	ID                string  `db:"id"`
	Gender            string  `db:"gender"`
	ParentalEducation string  `db:"parental_education"`
	TestPrep          string  `db:"test_prep"`
	MathScore         float64 `db:"math_score"`
	ReadingScore      float64 `db:"reading_score"`
	WritingScore      float64 `db:"writing_score"`
}

func (r studentRow) toRecord() (student.Record, error) {
	gender, err := student.ParseGender(r.Gender)
	if err != nil {
		return student.Record{}, fmt.Errorf("student %s: %w", r.ID, err)
	}
	edu, err := student.ParseParentalEducation(r.ParentalEducation)
	if err != nil {
		return student.Record{}, fmt.Errorf("student %s: %w", r.ID, err)
	}
	prep, err := student.ParseTestPrep(r.TestPrep)
	if err != nil {
		return student.Record{}, fmt.Errorf("student %s: %w", r.ID, err)
	}
	return student.Record{
		ID:                r.ID,
		Gender:            gender,
		ParentalEducation: edu,
		TestPrep:          prep,
		MathScore:         r.MathScore,
		ReadingScore:      r.ReadingScore,
		WritingScore:      r.WritingScore,
	}, nil
}

func fromRecord(rec student.Record) studentRow {
	return studentRow{
		ID:                rec.ID,
		Gender:            string(rec.Gender),
		ParentalEducation: string(rec.ParentalEducation),
		TestPrep:          string(rec.TestPrep),
		MathScore:         rec.MathScore,
		ReadingScore:      rec.ReadingScore,
		WritingScore:      rec.WritingScore,
	}
}

// StudentRepository reads and seeds exam records in Postgres
type StudentRepository struct {
	db *sqlx.DB
}

var (
	_ ports.RecordSource = (*StudentRepository)(nil)
	_ ports.RecordWriter = (*StudentRepository)(nil)
)

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Name identifies the source
func (r *StudentRepository) Name() string { return "postgres" }

// Fetch returns every student ordered by id
func (r *StudentRepository) Fetch(ctx context.Context) ([]student.Record, error) {
	query := `SELECT id, gender, parental_education, test_prep, math_score, reading_score, writing_score
		FROM students ORDER BY id`

	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}

	records := make([]student.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Insert upserts records in a single transaction and reports how many rows changed
func (r *StudentRepository) Insert(ctx context.Context, records []student.Record) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO students (
		id, gender, parental_education, test_prep, math_score, reading_score, writing_score
	) VALUES (
		:id, :gender, :parental_education, :test_prep, :math_score, :reading_score, :writing_score
	)
	ON CONFLICT (id) DO UPDATE SET
		gender = EXCLUDED.gender,
		parental_education = EXCLUDED.parental_education,
		test_prep = EXCLUDED.test_prep,
		math_score = EXCLUDED.math_score,
		reading_score = EXCLUDED.reading_score,
		writing_score = EXCLUDED.writing_score,
		updated_at = NOW()`

	affected := 0
	for _, rec := range records {
		res, err := tx.NamedExecContext(ctx, query, fromRecord(rec))
		if err != nil {
			return 0, fmt.Errorf("failed to insert student %s: %w", rec.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		affected += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit students: %w", err)
	}
	return affected, nil
}

// Count returns the number of stored students
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}
