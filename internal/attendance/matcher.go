package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/imaging"
)

// Matcher scores detected classroom faces against a reference set.
type Matcher struct {
	detector     Detector
	detConfFloor float64
	simThreshold float64
}

// NewMatcher creates a frame matcher. detConfFloor drops low-confidence
// detections; simThreshold is the inclusive presence boundary.
func NewMatcher(detector Detector, detConfFloor, simThreshold float64) *Matcher {
	return &Matcher{
		detector:     detector,
		detConfFloor: detConfFloor,
		simThreshold: simThreshold,
	}
}

// Match computes every subject's best similarity against all detected faces
// in the frame. An undecodable frame is the one hard failure in this path;
// a frame with no faces yields a valid all-absent report.
//
// The policy is many-to-one best-score: two subjects may both claim the same
// detected face as their best match. The question answered is "is this
// subject's face in the photo", not "whose face is this".
func (m *Matcher) Match(ctx context.Context, frame []byte, refs *ReferenceSet) (SimilarityReport, error) {
	report := make(SimilarityReport, len(refs.Subjects()))
	for _, id := range refs.Subjects() {
		report[id] = SubjectScore{}
	}

	if _, _, err := imaging.Probe(frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameDecode, err)
	}

	faces, err := m.detector.DetectFaces(ctx, frame)
	if err != nil {
		if errors.Is(err, ErrModelInit) {
			return nil, err
		}
		return nil, fmt.Errorf("frame face detection failed: %w", err)
	}

	for _, face := range faces {
		if face.DetScore < m.detConfFloor {
			continue
		}
		emb := face.Embedding.Normalize()
		if len(emb) == 0 {
			continue
		}
		// Full cross product; reference counts are single digits per
		// subject, so this is not a bottleneck at classroom scale.
		for _, id := range refs.Subjects() {
			score := report[id]
			for _, ref := range refs.References(id) {
				if sim := CosineSimilarity(ref, emb); sim > score.BestSimilarity {
					score.BestSimilarity = sim
				}
			}
			report[id] = score
		}
	}

	for id, score := range report {
		score.Present = score.BestSimilarity >= m.simThreshold
		report[id] = score
	}
	return report, nil
}
