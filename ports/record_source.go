package ports

import (
	"context"

	"exampulse/domain/student"
)

// RecordSource is the one-shot fetch boundary for student records.
// Implementations must honour ctx cancellation and return the complete list.
type RecordSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// Fetch returns every record held by the source
	Fetch(ctx context.Context) ([]student.Record, error)
}

// RecordWriter persists records into a source that supports seeding
type RecordWriter interface {
	Insert(ctx context.Context, records []student.Record) (int, error)
}
