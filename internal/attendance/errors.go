package attendance

import (
	"errors"
	"fmt"
)

// Fatal errors of the recognition pipeline. Callers match with errors.Is.
var (
	// ErrNoReferences means the requested roster produced zero usable
	// reference embeddings across all subjects.
	ErrNoReferences = errors.New("no reference embeddings built for requested subjects")

	// ErrFrameDecode means the classroom frame bytes are not a valid image.
	ErrFrameDecode = errors.New("could not decode classroom frame")

	// ErrFrameFetch means a remote classroom frame could not be retrieved.
	ErrFrameFetch = errors.New("could not fetch classroom frame")

	// ErrModelInit means the detector/embedder failed to initialize.
	// It surfaces once at first use and should fail readiness, not be
	// retried silently per request.
	ErrModelInit = errors.New("face model initialization failed")
)

// Warning records a non-fatal problem with a single enrollment image.
// Warnings accumulate during reference building and never abort it.
type Warning struct {
	Subject SubjectID
	Path    string
	Reason  string
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Subject, w.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Subject, w.Reason, w.Path)
}
