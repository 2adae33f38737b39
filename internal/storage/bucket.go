package storage

import (
	"context"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// BucketSource adapts one storage bucket to the attendance engine's image
// source. Enrollment photos live in one folder per subject; the folder name
// is the subject identifier.
type BucketSource struct {
	client *Client
	bucket string
}

// NewBucketSource creates an image source backed by a storage bucket.
func NewBucketSource(client *Client, bucket string) *BucketSource {
	return &BucketSource{client: client, bucket: bucket}
}

// SubjectImages lists the whole bucket once and groups file paths by their
// top-level folder, keeping only folders that match a roster subject.
// Paths keep their listing order so downstream warnings are reproducible.
func (s *BucketSource) SubjectImages(ctx context.Context, roster []attendance.SubjectID) (map[attendance.SubjectID][]string, error) {
	paths, err := s.client.List(ctx, s.bucket, "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[attendance.SubjectID]bool, len(roster))
	for _, id := range roster {
		wanted[id] = true
	}

	images := make(map[attendance.SubjectID][]string)
	for _, p := range paths {
		folder, _, ok := strings.Cut(p, "/")
		if !ok {
			continue // top-level files belong to nobody
		}
		id := attendance.NormalizeSubjectID(folder)
		if wanted[id] {
			images[id] = append(images[id], p)
		}
	}
	return images, nil
}

// Fetch downloads one enrollment photo by path.
func (s *BucketSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	return s.client.Download(ctx, s.bucket, path)
}
