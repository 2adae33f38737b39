package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// RecordRepository provides PostgreSQL-backed attendance record storage
type RecordRepository struct {
	pool *Pool
}

// NewRecordRepository creates a new PostgreSQL record repository
func NewRecordRepository(pool *Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// SaveReport stores one row per roster subject for a processed frame.
// Rows are written in one transaction so a session never sees half a report.
func (r *RecordRepository) SaveReport(ctx context.Context, sessionID, imageName string, record *attendance.AttendanceRecord) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO attendance_records (id, session_id, image_name, subject_id, status, similarity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for subject, status := range record.Subjects {
		_, err := tx.ExecContext(ctx, query,
			uuid.New().String(), sessionID, imageName, string(subject), status.Status, status.SimilarityPercent)
		if err != nil {
			return fmt.Errorf("save attendance record for %s: %w", subject, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance report: %w", err)
	}
	return nil
}

// ListBySession retrieves all attendance records for a session, newest frame
// first, subjects alphabetical within a frame.
func (r *RecordRepository) ListBySession(ctx context.Context, sessionID string) ([]StoredRecord, error) {
	query := `
		SELECT id, session_id, image_name, subject_id, status, similarity, created_at
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY created_at DESC, subject_id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ImageName, &rec.SubjectID, &rec.Status, &rec.Similarity, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
