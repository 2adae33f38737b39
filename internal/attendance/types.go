// Package attendance implements the embedding matching and attendance
// resolution engine: it builds per-subject reference embeddings from
// enrollment photos, scores detected classroom faces against them and
// resolves a deterministic present/absent decision per subject.
package attendance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SubjectID identifies one enrolled individual within a single request.
type SubjectID string

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeSubjectID normalizes a raw identifier for comparison
// (trimmed, lowercase, no diacritics). Storage folder names and roster
// entries must agree after normalization.
func NormalizeSubjectID(raw string) SubjectID {
	s := removeDiacritics(strings.TrimSpace(raw))
	return SubjectID(strings.ToLower(s))
}

// NormalizeRoster normalizes a list of raw identifiers, dropping empties and
// duplicates while preserving first-seen order.
func NormalizeRoster(raw []string) []SubjectID {
	seen := make(map[SubjectID]bool, len(raw))
	roster := make([]SubjectID, 0, len(raw))
	for _, r := range raw {
		id := NormalizeSubjectID(r)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, id)
	}
	return roster
}

// RawImage is an opaque image payload. Path is used only for diagnostics.
// Empty Data means the blob could not be fetched.
type RawImage struct {
	Path string
	Data []byte
}

// DetectedFace is one face found by the detector in a single image.
type DetectedFace struct {
	BBox      []float64 // [x1, y1, x2, y2] in pixels
	DetScore  float64   // detector confidence in [0, 1]
	Embedding Vector
}

// BBoxArea returns the bounding box area in square pixels.
func (f DetectedFace) BBoxArea() float64 {
	if len(f.BBox) != 4 {
		return 0
	}
	w := f.BBox[2] - f.BBox[0]
	h := f.BBox[3] - f.BBox[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ReferenceSet maps each roster subject to its reference embeddings.
// Subjects with no usable enrollment photo are tracked with an empty list so
// the resolver can still report them absent. Immutable after building.
type ReferenceSet struct {
	subjects []SubjectID
	refs     map[SubjectID][]Vector
}

// NewReferenceSet creates a reference set covering the given roster.
func NewReferenceSet(roster []SubjectID) *ReferenceSet {
	refs := make(map[SubjectID][]Vector, len(roster))
	subjects := make([]SubjectID, len(roster))
	copy(subjects, roster)
	for _, id := range subjects {
		refs[id] = nil
	}
	return &ReferenceSet{subjects: subjects, refs: refs}
}

// Add appends a reference embedding for a subject.
func (s *ReferenceSet) Add(id SubjectID, v Vector) {
	if _, ok := s.refs[id]; !ok {
		s.subjects = append(s.subjects, id)
	}
	s.refs[id] = append(s.refs[id], v)
}

// Subjects returns the roster subjects in their original order.
func (s *ReferenceSet) Subjects() []SubjectID {
	return s.subjects
}

// References returns the reference embeddings for a subject (may be empty).
func (s *ReferenceSet) References(id SubjectID) []Vector {
	return s.refs[id]
}

// Len returns the total number of reference embeddings across all subjects.
func (s *ReferenceSet) Len() int {
	n := 0
	for _, vs := range s.refs {
		n += len(vs)
	}
	return n
}

// Empty reports whether no subject has any reference embedding.
func (s *ReferenceSet) Empty() bool {
	return s.Len() == 0
}

// SubjectScore is one subject's best observed match in a frame.
type SubjectScore struct {
	BestSimilarity float64
	Present        bool
}

// SimilarityReport maps every roster subject to its best observed score,
// including subjects with no reference embeddings (score 0, absent).
type SimilarityReport map[SubjectID]SubjectScore

// Attendance statuses. These string values are part of the API contract.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// SubjectStatus is the final per-subject attendance decision.
// The json field names are the stable contract other layers depend on.
type SubjectStatus struct {
	Status            string  `json:"status"`
	SimilarityPercent float64 `json:"similarity_percent"`
}

// AttendanceRecord is the final output: a status per roster subject plus the
// recognized subjects as a convenience aggregate.
type AttendanceRecord struct {
	Subjects     map[SubjectID]SubjectStatus `json:"subjects"`
	Recognized   []SubjectID                 `json:"recognized"`
	TotalPresent int                         `json:"total_present"`
}
