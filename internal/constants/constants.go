// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Recognition defaults
const (
	// DefaultSimilarityThreshold is the minimum cosine similarity for a
	// subject to be considered present (inclusive)
	DefaultSimilarityThreshold = 0.55

	// DefaultDetConfThreshold is the minimum detector confidence for a
	// bounding box to be considered a real face
	DefaultDetConfThreshold = 0.25

	// DefaultEmbeddingDim is the embedding dimensionality of the default
	// recognition model
	DefaultEmbeddingDim = 512
)

// Processing constants
const (
	// DefaultBuildWorkers is the default number of parallel workers for
	// downloading and embedding enrollment photos
	DefaultBuildWorkers = 4

	// MaxFrameSize is the maximum dimension (width or height) sent to the
	// inference server; larger images are scaled down first
	MaxFrameSize = 1024

	// MaxUploadSize is the maximum size in bytes for uploaded classroom frames
	MaxUploadSize = 32 << 20 // 32 MB
)

// Storage defaults
const (
	// DefaultStudentBucket holds enrollment photos, one folder per subject
	DefaultStudentBucket = "student-images"

	// DefaultFramesBucket holds captured classroom frames
	DefaultFramesBucket = "classroom-frames"

	// StorageListPageSize is the page size for object listing requests
	StorageListPageSize = 1000
)
