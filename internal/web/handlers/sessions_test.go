package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
)

func sessionsRouter(handler *SessionsHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/sessions/{sessionID}", handler.Get)
	return router
}

func seedSession(t *testing.T, store *mock.MockRecordStore, sessionID string) {
	t.Helper()
	record := &attendance.AttendanceRecord{
		Subjects: map[attendance.SubjectID]attendance.SubjectStatus{
			"alice": {Status: "present", SimilarityPercent: 0.91},
			"bob":   {Status: "absent", SimilarityPercent: 0.12},
		},
		Recognized:   []attendance.SubjectID{"alice"},
		TotalPresent: 1,
	}
	if err := store.SaveReport(context.Background(), sessionID, "CR042_1700000000", record); err != nil {
		t.Fatalf("could not seed session: %v", err)
	}
}

func TestSessionsGet(t *testing.T) {
	store := mock.NewMockRecordStore()
	seedSession(t, store, "CR042")
	seedSession(t, store, "CR043")

	router := sessionsRouter(NewSessionsHandler(store))
	req := httptest.NewRequest(http.MethodGet, "/sessions/CR042", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp sessionResponse
	parseJSONResponse(t, rec, &resp)

	if resp.SessionID != "CR042" {
		t.Errorf("SessionID = %q, want CR042", resp.SessionID)
	}
	if resp.Count != 2 || len(resp.Records) != 2 {
		t.Fatalf("Count = %d with %d records, want 2", resp.Count, len(resp.Records))
	}
	for _, record := range resp.Records {
		if record.SubjectID == "" {
			t.Errorf("record missing subject id: %+v", record)
		}
	}
}

func TestSessionsGetEmpty(t *testing.T) {
	router := sessionsRouter(NewSessionsHandler(mock.NewMockRecordStore()))
	req := httptest.NewRequest(http.MethodGet, "/sessions/CR999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp sessionResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 0 || len(resp.Records) != 0 {
		t.Errorf("Count = %d with records %v, want empty", resp.Count, resp.Records)
	}
}

func TestSessionsGetHistoryDisabled(t *testing.T) {
	router := sessionsRouter(NewSessionsHandler(nil))
	req := httptest.NewRequest(http.MethodGet, "/sessions/CR042", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assertJSONError(t, rec, http.StatusServiceUnavailable)
}

func TestSessionsGetListFailure(t *testing.T) {
	store := mock.NewMockRecordStore()
	store.ListError = errors.New("database down")

	router := sessionsRouter(NewSessionsHandler(store))
	req := httptest.NewRequest(http.MethodGet, "/sessions/CR042", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assertJSONError(t, rec, http.StatusInternalServerError)
}
