// Package merge partitions a validator's raw violations against an
// override store and a confidence threshold, annotating suppressed
// entries and recomputing the pass/fail verdict.
package merge

import "github.com/valence-dev/valence/models"

// OverrideLookup is the read-side contract the merger needs from an
// override store.
type OverrideLookup interface {
	Get(v models.Violation, filePath string) (models.OverrideRecord, bool)
}

// Merge partitions result.Violations into active/low-confidence/
// overridden sets, annotates overridden entries from store, and
// recomputes Passed from the active set. A result that failed without
// producing any violation (a validator-level error, or a file that
// could not be read) has nothing to suppress and stays failed. The raw totals (sum of
// all three buckets) are preserved, per ValidationResult.RawViolationCount.
func Merge(result models.ValidationResult, store OverrideLookup, confidenceThreshold float64) models.ValidationResult {
	var active, lowConfidence, overridden []models.Violation

	for _, v := range result.Violations {
		if record, ok := store.Get(v, v.FilePath); ok {
			v.OverrideReason = record.Reason
			v.OverriddenBy = record.AddedBy
			v.OverriddenAt = record.AddedAt
			overridden = append(overridden, v)
			continue
		}
		if v.Confidence < confidenceThreshold {
			lowConfidence = append(lowConfidence, v)
			continue
		}
		active = append(active, v)
	}

	merged := result
	merged.Violations = active
	merged.LowConfidenceViolations = append(append([]models.Violation{}, result.LowConfidenceViolations...), lowConfidence...)
	merged.OverriddenViolations = append(append([]models.Violation{}, result.OverriddenViolations...), overridden...)
	merged.Passed = len(merged.Violations) == 0
	if !result.Passed && len(result.Violations) == 0 {
		merged.Passed = false
	}
	return merged
}
