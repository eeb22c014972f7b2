package storage

import (
	"context"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

// Storage is the meeting record store. The pipeline usecase is the only
// writer for a given meeting while a processing run is in flight; the
// BeginProcessing lease enforces that.
type Storage interface {
	CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	ListMeetings(ctx context.Context) ([]*entity.Meeting, error)

	// BeginProcessing moves a meeting from pending or failed to processing.
	// It returns entity.ErrAlreadyCompleted for completed meetings and
	// entity.ErrAlreadyProcessing when a run already holds the lease.
	// A fresh attempt clears results left over from a prior one.
	BeginProcessing(ctx context.Context, id string) (*entity.Meeting, error)

	SaveRecording(ctx context.Context, id, audioPath string, durationSeconds int) error
	SaveTranscript(ctx context.Context, id, transcript string) error
	Complete(ctx context.Context, id string, analysis *entity.AnalysisResult) (*entity.Meeting, error)
	Fail(ctx context.Context, id, message string) error
}
