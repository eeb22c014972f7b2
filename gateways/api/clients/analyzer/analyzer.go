package analyzer

import (
	"context"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

// Analyzer extracts structured insights from a meeting transcript.
//
// Implementations degrade rather than fail: a malformed model response or a
// transport error yields a partial AnalysisResult with its Error field set,
// so the pipeline can still complete the run.
type Analyzer interface {
	Analyze(ctx context.Context, transcript, meetingLabel string) (*entity.AnalysisResult, error)
}
