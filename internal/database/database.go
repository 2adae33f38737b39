// Package database provides the optional PostgreSQL-backed attendance
// history. It stores final per-subject outcomes only; reference embeddings
// are never persisted across requests.
package database

import (
	"context"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// StoredRecord is one subject's attendance outcome for one processed frame.
type StoredRecord struct {
	ID         string
	SessionID  string
	ImageName  string
	SubjectID  string
	Status     string
	Similarity float64
	CreatedAt  time.Time
}

// RecordStore persists and retrieves attendance outcomes. Implemented by the
// PostgreSQL repository and by the test mock.
type RecordStore interface {
	SaveReport(ctx context.Context, sessionID, imageName string, record *attendance.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]StoredRecord, error)
}
