package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// SessionsHandler serves stored attendance history.
type SessionsHandler struct {
	records database.RecordStore // nil when attendance history is disabled
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(records database.RecordStore) *SessionsHandler {
	return &SessionsHandler{records: records}
}

// sessionRecordJSON is one stored attendance row.
type sessionRecordJSON struct {
	SubjectID  string    `json:"subject_id"`
	Status     string    `json:"status"`
	Similarity float64   `json:"similarity_percent"`
	ImageName  string    `json:"image_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// sessionResponse lists all attendance rows for one session.
type sessionResponse struct {
	SessionID string              `json:"session_id"`
	Records   []sessionRecordJSON `json:"records"`
	Count     int                 `json:"count"`
}

// Get returns the stored attendance records for a session.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		respondError(w, http.StatusServiceUnavailable, "attendance history not available")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required")
		return
	}

	stored, err := h.records.ListBySession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load attendance records")
		return
	}

	resp := sessionResponse{
		SessionID: sessionID,
		Records:   make([]sessionRecordJSON, 0, len(stored)),
	}
	for _, rec := range stored {
		resp.Records = append(resp.Records, sessionRecordJSON{
			SubjectID:  rec.SubjectID,
			Status:     rec.Status,
			Similarity: rec.Similarity,
			ImageName:  rec.ImageName,
			CreatedAt:  rec.CreatedAt,
		})
	}
	resp.Count = len(resp.Records)

	respondJSON(w, http.StatusOK, resp)
}
