package attendance

import (
	"context"
	"fmt"
)

// ImageSource discovers and fetches enrollment photos. Any per-blob failure
// is "no image for this locator", never a crash.
type ImageSource interface {
	// SubjectImages returns each roster subject's enrollment photo paths in
	// a stable order. Subjects without photos may be missing from the map.
	SubjectImages(ctx context.Context, roster []SubjectID) (map[SubjectID][]string, error)

	// Fetch downloads one blob by path.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Config holds the recognition parameters, fixed for the lifetime of one
// engine instance.
type Config struct {
	SimilarityThreshold float64 // inclusive presence boundary
	DetConfThreshold    float64 // minimum detection confidence
	EmbeddingDim        int     // model embedding dimensionality (0 = unchecked)
	BuildWorkers        int     // parallel enrollment photo workers
}

// Engine runs the full pipeline: roster -> reference embeddings -> frame
// matching -> attendance record. One engine serves many requests; every
// request rebuilds its reference set from source images (no caching).
type Engine struct {
	source  ImageSource
	builder *Builder
	matcher *Matcher
}

// NewEngine wires the detector and image source into a recognition engine.
func NewEngine(cfg Config, detector Detector, source ImageSource) *Engine {
	return &Engine{
		source:  source,
		builder: NewBuilder(detector, cfg.EmbeddingDim, cfg.BuildWorkers),
		matcher: NewMatcher(detector, cfg.DetConfThreshold, cfg.SimilarityThreshold),
	}
}

// SetBuildProgress registers a callback invoked after each processed
// enrollment photo. Used by CLI progress bars.
func (e *Engine) SetBuildProgress(fn func(done, total int)) {
	e.builder.Progress = fn
}

// BuildReferences builds the reference set for a normalized roster.
func (e *Engine) BuildReferences(ctx context.Context, roster []SubjectID) (*ReferenceSet, []Warning, error) {
	paths, err := e.source.SubjectImages(ctx, roster)
	if err != nil {
		return nil, nil, fmt.Errorf("listing enrollment images: %w", err)
	}

	lookup := func(ctx context.Context, id SubjectID) ([]RawImage, error) {
		images := make([]RawImage, 0, len(paths[id]))
		for _, p := range paths[id] {
			data, err := e.source.Fetch(ctx, p)
			if err != nil {
				// Empty Data marks the download failure; the builder
				// turns it into a warning.
				data = nil
			}
			images = append(images, RawImage{Path: p, Data: data})
		}
		return images, nil
	}

	return e.builder.Build(ctx, roster, lookup)
}

// TakeAttendance runs the whole pipeline for one classroom frame. Raw roster
// entries are normalized first; the returned record covers exactly the
// normalized roster. Warnings report skipped enrollment images.
func (e *Engine) TakeAttendance(ctx context.Context, enrolled []string, frame []byte) (*AttendanceRecord, []Warning, error) {
	roster := NormalizeRoster(enrolled)

	refs, warnings, err := e.BuildReferences(ctx, roster)
	if err != nil {
		return nil, warnings, err
	}

	report, err := e.matcher.Match(ctx, frame, refs)
	if err != nil {
		return nil, warnings, err
	}

	return Resolve(roster, report), warnings, nil
}
