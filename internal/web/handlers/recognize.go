package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// FrameSource downloads captured classroom frames from storage.
type FrameSource interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// RecognizeHandler handles attendance recognition endpoints.
type RecognizeHandler struct {
	config      *config.Config
	engine      *attendance.Engine
	frames      FrameSource          // nil when no frames bucket is configured
	records     database.RecordStore // nil when attendance history is disabled
	frameClient *http.Client
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(cfg *config.Config, engine *attendance.Engine, frames FrameSource, records database.RecordStore) *RecognizeHandler {
	return &RecognizeHandler{
		config:      cfg,
		engine:      engine,
		frames:      frames,
		records:     records,
		frameClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RecognizeResponse is the attendance result for one processed frame.
type RecognizeResponse struct {
	SessionID         string                       `json:"session_id"`
	ImageName         string                       `json:"image_name"`
	Attendance        map[string]subjectStatusJSON `json:"attendance"`
	RecognizedSummary []string                     `json:"recognized_summary"`
	TotalPresent      int                          `json:"total_present"`
	Warnings          []string                     `json:"warnings,omitempty"`
}

// subjectStatusJSON mirrors attendance.SubjectStatus; the field names
// status and similarity_percent are the stable API contract.
type subjectStatusJSON struct {
	Status            string  `json:"status"`
	SimilarityPercent float64 `json:"similarity_percent"`
}

// parseEnrolled accepts either a JSON array of ids or a comma-separated list.
func parseEnrolled(raw string) []string {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids
	}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// defaultImageName generates a frame name when the caller provided none.
func defaultImageName() string {
	return fmt.Sprintf("CR000_%d", time.Now().Unix())
}

// Upload handles a multipart classroom frame upload.
func (h *RecognizeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	enrolled := parseEnrolled(r.FormValue("enrolled"))
	if len(enrolled) == 0 {
		respondError(w, http.StatusBadRequest, "enrolled is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	frame, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "cannot read uploaded file")
		return
	}

	imageName := r.FormValue("image_name")
	if imageName == "" {
		imageName = defaultImageName()
	}

	h.recognize(w, r.Context(), sessionID, imageName, enrolled, frame)
}

// fromURLRequest is the request body for recognition of a remote frame.
// Exactly one of FrameURL and FramePath must be set; FramePath resolves
// against the configured classroom frames bucket.
type fromURLRequest struct {
	SessionID string   `json:"session_id"`
	Enrolled  []string `json:"enrolled"`
	FrameURL  string   `json:"frame_url"`
	FramePath string   `json:"frame_path"`
	ImageName string   `json:"image_name"`
}

// FromURL handles recognition of a frame fetched from a remote URL or from
// the classroom frames bucket.
func (h *RecognizeHandler) FromURL(w http.ResponseWriter, r *http.Request) {
	var req fromURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if len(req.Enrolled) == 0 {
		respondError(w, http.StatusBadRequest, "enrolled is required")
		return
	}
	if (req.FrameURL == "") == (req.FramePath == "") {
		respondError(w, http.StatusBadRequest, "exactly one of frame_url and frame_path is required")
		return
	}
	if req.FramePath != "" && h.frames == nil {
		respondError(w, http.StatusBadRequest, "frame_path requires a configured frames bucket")
		return
	}

	var frame []byte
	var err error
	if req.FrameURL != "" {
		frame, err = h.fetchFrame(r.Context(), req.FrameURL)
	} else {
		frame, err = h.frames.Fetch(r.Context(), req.FramePath)
		if err != nil {
			err = fmt.Errorf("%w: %v", attendance.ErrFrameFetch, err)
		}
	}
	if err != nil {
		respondError(w, engineErrorStatus(err), err.Error())
		return
	}

	imageName := req.ImageName
	if imageName == "" {
		imageName = defaultImageName()
	}

	h.recognize(w, r.Context(), req.SessionID, imageName, req.Enrolled, frame)
}

// fetchFrame downloads a remote classroom frame. The whole request has
// nothing to match without a frame, so any failure here is fatal.
func (h *RecognizeHandler) fetchFrame(ctx context.Context, frameURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, frameURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrFrameFetch, err)
	}

	resp, err := h.frameClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrFrameFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", attendance.ErrFrameFetch, resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrFrameFetch, err)
	}
	return frame, nil
}

// recognize runs the engine and writes the attendance response.
func (h *RecognizeHandler) recognize(w http.ResponseWriter, ctx context.Context, sessionID, imageName string, enrolled []string, frame []byte) {
	record, warnings, err := h.engine.TakeAttendance(ctx, enrolled, frame)
	if err != nil {
		respondError(w, engineErrorStatus(err), err.Error())
		return
	}

	if h.records != nil {
		// Losing history must not lose the computed attendance.
		if err := h.records.SaveReport(ctx, sessionID, imageName, record); err != nil {
			log.Printf("failed to save attendance report for session %s: %v", sanitizeForLog(sessionID), err)
		}
	}

	resp := RecognizeResponse{
		SessionID:         sessionID,
		ImageName:         imageName,
		Attendance:        make(map[string]subjectStatusJSON, len(record.Subjects)),
		RecognizedSummary: make([]string, 0, len(record.Recognized)),
		TotalPresent:      record.TotalPresent,
	}
	for id, status := range record.Subjects {
		resp.Attendance[string(id)] = subjectStatusJSON{
			Status:            status.Status,
			SimilarityPercent: status.SimilarityPercent,
		}
	}
	for _, id := range record.Recognized {
		resp.RecognizedSummary = append(resp.RecognizedSummary, string(id))
	}
	for _, warn := range warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	respondJSON(w, http.StatusOK, resp)
}
