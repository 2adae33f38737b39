package attendance

import "math"

// roundSimilarity rounds to 2 decimal places for the API contract.
func roundSimilarity(v float64) float64 {
	return math.Round(v*100) / 100
}

// Resolve merges a similarity report with the full roster into the final
// attendance record. Every roster subject gets a status, including subjects
// that never had reference embeddings; subjects missing from the report
// (which the matcher contract rules out) default to absent with 0.0.
// Pure and deterministic: no I/O, no side effects.
func Resolve(roster []SubjectID, report SimilarityReport) *AttendanceRecord {
	record := &AttendanceRecord{
		Subjects: make(map[SubjectID]SubjectStatus, len(roster)),
	}

	for _, id := range roster {
		score := report[id]
		status := StatusAbsent
		if score.Present {
			status = StatusPresent
			record.Recognized = append(record.Recognized, id)
		}
		record.Subjects[id] = SubjectStatus{
			Status:            status,
			SimilarityPercent: roundSimilarity(score.BestSimilarity),
		}
	}

	record.TotalPresent = len(record.Recognized)
	return record
}
