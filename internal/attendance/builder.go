package attendance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kozaktomas/face-attendance/internal/imaging"
)

// Detector converts an encoded image into zero or more detected faces.
// Implementations must be safe for concurrent use; the engine may call it
// from multiple build workers.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]DetectedFace, error)
}

// ImageLookup resolves a subject to its enrollment images. The returned
// order must be stable so warnings and reference ordering are reproducible.
// An image with empty Data means the blob could not be fetched.
type ImageLookup func(ctx context.Context, id SubjectID) ([]RawImage, error)

// Builder builds per-subject reference embeddings from enrollment photos.
type Builder struct {
	detector     Detector
	embeddingDim int
	workers      int

	// Progress, when set, is called after every processed image.
	Progress func(done, total int)
}

// NewBuilder creates a reference set builder. embeddingDim of 0 disables the
// dimensionality check. workers bounds parallel embedding extraction.
func NewBuilder(detector Detector, embeddingDim, workers int) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		detector:     detector,
		embeddingDim: embeddingDim,
		workers:      workers,
	}
}

// buildTask is one (subject, image) unit of work.
type buildTask struct {
	subjectIdx int
	imageIdx   int
	subject    SubjectID
	image      RawImage
}

// buildResult is the outcome of one task. Exactly one of embedding, warn or
// err is meaningful.
type buildResult struct {
	embedding Vector
	warn      *Warning
	err       error
}

// Build resolves the roster into a reference set. Images that cannot be
// fetched, decoded or embedded are skipped with a warning; the build only
// fails with ErrNoReferences when every subject ends up empty.
//
// Images may be processed in parallel, but results are reassembled by
// (subject, image) position so reference order and warning order are
// deterministic regardless of completion order.
func (b *Builder) Build(ctx context.Context, roster []SubjectID, lookup ImageLookup) (*ReferenceSet, []Warning, error) {
	set := NewReferenceSet(roster)
	var warnings []Warning

	// Resolve every subject's image list up front, in roster order.
	images := make([][]RawImage, len(roster))
	var tasks []buildTask
	for si, id := range roster {
		imgs, err := lookup(ctx, id)
		if err != nil {
			warnings = append(warnings, Warning{Subject: id, Reason: "could not list enrollment images: " + err.Error()})
			continue
		}
		if len(imgs) == 0 {
			warnings = append(warnings, Warning{Subject: id, Reason: "no enrollment images found"})
			continue
		}
		images[si] = imgs
		for ii, img := range imgs {
			tasks = append(tasks, buildTask{subjectIdx: si, imageIdx: ii, subject: id, image: img})
		}
	}

	// Each task writes to its own slot, so no locking is needed.
	results := make([][]buildResult, len(roster))
	for si := range results {
		results[si] = make([]buildResult, len(images[si]))
	}

	taskCh := make(chan buildTask)
	var wg sync.WaitGroup
	var done atomic.Int64
	total := len(tasks)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				results[task.subjectIdx][task.imageIdx] = b.embedImage(ctx, task.subject, task.image)
				if b.Progress != nil {
					b.Progress(int(done.Add(1)), total)
				}
			}
		}()
	}
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()

	// Reassemble in roster and image order.
	for si, id := range roster {
		for _, res := range results[si] {
			switch {
			case res.err != nil:
				return nil, warnings, res.err
			case res.warn != nil:
				warnings = append(warnings, *res.warn)
			default:
				set.Add(id, res.embedding)
			}
		}
	}

	if set.Empty() {
		return nil, warnings, ErrNoReferences
	}
	return set, warnings, nil
}

// embedImage extracts one normalized reference embedding from a single
// enrollment photo. Enrollment photos are assumed single-subject: when the
// detector finds multiple faces, the largest bounding box wins (first
// occurrence on ties), as area is a robust proxy for the intended subject
// versus background faces.
func (b *Builder) embedImage(ctx context.Context, id SubjectID, img RawImage) buildResult {
	warn := func(reason string) buildResult {
		return buildResult{warn: &Warning{Subject: id, Path: img.Path, Reason: reason}}
	}

	if len(img.Data) == 0 {
		return warn("could not download image")
	}
	if _, _, err := imaging.Probe(img.Data); err != nil {
		return warn("cannot decode image")
	}

	faces, err := b.detector.DetectFaces(ctx, img.Data)
	if err != nil {
		// A broken model fails the whole build; everything else is one bad image.
		if errors.Is(err, ErrModelInit) {
			return buildResult{err: err}
		}
		return warn("face detection failed: " + err.Error())
	}
	if len(faces) == 0 {
		return warn("no face detected")
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.BBoxArea() > best.BBoxArea() {
			best = f
		}
	}

	if len(best.Embedding) == 0 {
		return warn("empty embedding")
	}
	if b.embeddingDim > 0 && len(best.Embedding) != b.embeddingDim {
		return warn("unexpected embedding dimensionality")
	}

	return buildResult{embedding: best.Embedding.Normalize()}
}
