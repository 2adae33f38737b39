package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
)

// stubDetector maps the decoded image width to a fixed detection result.
type stubDetector struct {
	faces map[int][]attendance.DetectedFace
}

func (d *stubDetector) DetectFaces(_ context.Context, imageData []byte) ([]attendance.DetectedFace, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}
	return d.faces[cfg.Width], nil
}

// stubSource serves enrollment photos from memory.
type stubSource struct {
	paths map[attendance.SubjectID][]string
	blobs map[string][]byte
}

func (s *stubSource) SubjectImages(_ context.Context, roster []attendance.SubjectID) (map[attendance.SubjectID][]string, error) {
	out := make(map[attendance.SubjectID][]string, len(roster))
	for _, id := range roster {
		if paths, ok := s.paths[id]; ok {
			out[id] = paths
		}
	}
	return out, nil
}

func (s *stubSource) Fetch(_ context.Context, path string) ([]byte, error) {
	return s.blobs[path], nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return buf.Bytes()
}

// testEngine builds an engine where alice has one enrollment photo and the
// 200px-wide frame contains her face.
func testEngine(t *testing.T) *attendance.Engine {
	t.Helper()
	aliceImg := testJPEG(t, 100, 100)
	detector := &stubDetector{faces: map[int][]attendance.DetectedFace{
		100: {{BBox: []float64{0, 0, 50, 50}, DetScore: 0.9, Embedding: attendance.Vector{1, 0, 0, 0}}},
		200: {{BBox: []float64{0, 0, 40, 40}, DetScore: 0.8, Embedding: attendance.Vector{1, 0, 0, 0}}},
	}}
	source := &stubSource{
		paths: map[attendance.SubjectID][]string{"alice": {"alice/1.jpg"}},
		blobs: map[string][]byte{"alice/1.jpg": aliceImg},
	}
	cfg := attendance.Config{
		SimilarityThreshold: 0.55,
		DetConfThreshold:    0.25,
		EmbeddingDim:        4,
		BuildWorkers:        2,
	}
	return attendance.NewEngine(cfg, detector, source)
}

func testConfig() *config.Config {
	return &config.Config{}
}

// multipartFrame builds a multipart body with the standard recognition fields.
func multipartFrame(t *testing.T, fields map[string]string, frame []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("could not write field %s: %v", name, err)
		}
	}
	if frame != nil {
		part, err := writer.CreateFormFile("file", "frame.jpg")
		if err != nil {
			t.Fatalf("could not create file part: %v", err)
		}
		if _, err := part.Write(frame); err != nil {
			t.Fatalf("could not write frame: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("could not close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func assertStatusCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) {
	t.Helper()
	assertStatusCode(t, rec, wantStatus)
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error response is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("error response has no error message: %v", body)
	}
}

func parseJSONResponse(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("could not parse response %q: %v", rec.Body.String(), err)
	}
}
