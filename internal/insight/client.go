// Package insight provides the HTTP client for the face detection and
// embedding server. The server wraps a single recognition model instance,
// so inference calls are serialized through the client.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/imaging"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 60 * time.Second
)

// Client talks to the face embedding server.
type Client struct {
	baseURL      string
	useGPU       bool
	maxImageSize int
	client       *http.Client

	// The model behind the server is initialized once and is not safe for
	// concurrent inference; initOnce guards the readiness probe and inferMu
	// serializes all inference calls.
	initOnce sync.Once
	initErr  error
	inferMu  sync.Mutex
}

// New creates a face embedding client. maxImageSize of 0 disables resizing
// of oversized payloads.
func New(baseURL string, useGPU bool, maxImageSize int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		useGPU:       useGPU,
		maxImageSize: maxImageSize,
		client:       &http.Client{Timeout: defaultTimeout},
	}
}

// faceDetection is one detected face in the server response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse is the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// ensureReady probes the server once. A failed probe surfaces as
// ErrModelInit on this and every later call; the process should fail
// readiness rather than retry per request.
func (c *Client) ensureReady(ctx context.Context) error {
	c.initOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			c.initErr = fmt.Errorf("%w: %v", attendance.ErrModelInit, err)
			return
		}
		resp, err := c.client.Do(req)
		if err != nil {
			c.initErr = fmt.Errorf("%w: %v", attendance.ErrModelInit, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			c.initErr = fmt.Errorf("%w: server returned status %d", attendance.ErrModelInit, resp.StatusCode)
		}
	})
	return c.initErr
}

// DetectFaces detects faces in an image and returns their embeddings.
// Safe for concurrent use; calls are serialized into the model.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]attendance.DetectedFace, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	if c.maxImageSize > 0 {
		// Decode validation is the caller's concern; on resize failure we
		// just send the original bytes.
		if resized, err := imaging.Resize(imageData, c.maxImageSize); err == nil {
			imageData = resized
		}
	}

	c.inferMu.Lock()
	defer c.inferMu.Unlock()

	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	faces := make([]attendance.DetectedFace, 0, len(faceResp.Faces))
	for _, f := range faceResp.Faces {
		faces = append(faces, attendance.DetectedFace{
			BBox:      f.BBox,
			DetScore:  f.DetScore,
			Embedding: attendance.Vector(f.Embedding),
		})
	}
	return faces, nil
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit Content-Type
// header based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", imaging.DetectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if c.useGPU {
		if err := writer.WriteField("accel", "1"); err != nil {
			return nil, fmt.Errorf("failed to write accel field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
