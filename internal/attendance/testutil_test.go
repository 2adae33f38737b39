package attendance

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// stubDetector routes detection through a plain function, standing in for
// the embedding server.
type stubDetector struct {
	fn func(ctx context.Context, imageData []byte) ([]DetectedFace, error)
}

func (d *stubDetector) DetectFaces(ctx context.Context, imageData []byte) ([]DetectedFace, error) {
	return d.fn(ctx, imageData)
}

// detectorByWidth maps the decoded image width to a fixed detection result,
// so tests can address images by their size alone.
func detectorByWidth(t *testing.T, faces map[int][]DetectedFace) *stubDetector {
	t.Helper()
	return &stubDetector{
		fn: func(_ context.Context, imageData []byte) ([]DetectedFace, error) {
			cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
			if err != nil {
				t.Fatalf("stub detector got undecodable image: %v", err)
			}
			return faces[cfg.Width], nil
		},
	}
}

// testJPEG encodes a solid-color JPEG of the given size.
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

func lookupFromMap(images map[SubjectID][]RawImage) ImageLookup {
	return func(_ context.Context, id SubjectID) ([]RawImage, error) {
		return images[id], nil
	}
}

func assertClose(t *testing.T, got, want float64) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e-6 {
		t.Errorf("got %v, want %v", got, want)
	}
}
