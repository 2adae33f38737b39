// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// MockRecordStore is a mock implementation of database.RecordStore
type MockRecordStore struct {
	mu      sync.RWMutex
	records []database.StoredRecord

	// Error injection
	SaveError error
	ListError error
}

// NewMockRecordStore creates a new mock record store
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{}
}

// SaveReport stores one row per roster subject in memory
func (m *MockRecordStore) SaveReport(ctx context.Context, sessionID, imageName string, record *attendance.AttendanceRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for subject, status := range record.Subjects {
		m.records = append(m.records, database.StoredRecord{
			ID:         sessionID + "/" + string(subject),
			SessionID:  sessionID,
			ImageName:  imageName,
			SubjectID:  string(subject),
			Status:     status.Status,
			Similarity: status.SimilarityPercent,
			CreatedAt:  time.Now(),
		})
	}
	return nil
}

// ListBySession returns the stored records for a session
func (m *MockRecordStore) ListBySession(ctx context.Context, sessionID string) ([]database.StoredRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.StoredRecord
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns the total number of stored records
func (m *MockRecordStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
