package usecase

// StagePolicy decides what a stage failure does to the run.
type StagePolicy string

const (
	// PolicyFail aborts the run and marks the meeting failed.
	PolicyFail StagePolicy = "fail"
	// PolicyDegrade records a partial result and lets the run continue;
	// later stages whose input is missing are skipped.
	PolicyDegrade StagePolicy = "degrade"
)

type StagePolicies struct {
	Recording     StagePolicy
	Transcription StagePolicy
	Analysis      StagePolicy
}

// DefaultPolicies matches the historical behavior: recording and
// transcription failures abort the run, analysis degrades.
func DefaultPolicies() StagePolicies {
	return StagePolicies{
		Recording:     PolicyFail,
		Transcription: PolicyFail,
		Analysis:      PolicyDegrade,
	}
}

// ParsePolicy reads a policy toggle, keeping the fallback for unknown
// values.
func ParsePolicy(s string, fallback StagePolicy) StagePolicy {
	switch StagePolicy(s) {
	case PolicyFail:
		return PolicyFail
	case PolicyDegrade:
		return PolicyDegrade
	}
	return fallback
}
