package usecase

import (
	"context"
	"fmt"

	"github.com/joeleesuh/delegate-ai/pkg/logger"
	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage"
)

const (
	defaultDisplayName   = "Unnamed Meeting"
	defaultOrganizerName = "Representative"
)

// Recorder has an automated participant join the meeting behind the source
// link and capture its audio.
type Recorder interface {
	JoinAndRecord(ctx context.Context, sourceLink, requesterName string) (*entity.Recording, error)
}

// Transcriber converts a recorded media asset to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error)
}

// Analyzer extracts structured insights from a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, transcript, meetingLabel string) (*entity.AnalysisResult, error)
}

type Usecase interface {
	CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	ListMeetings(ctx context.Context) ([]*entity.Meeting, error)
	ProcessMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	TranscribeFile(ctx context.Context, audioPath string) (string, error)
}

type usecase struct {
	storage     storage.Storage
	recorder    Recorder
	transcriber Transcriber
	analyzer    Analyzer
	policies    StagePolicies
}

func New(stg storage.Storage, rec Recorder, tr Transcriber, an Analyzer, policies StagePolicies) Usecase {
	return &usecase{
		storage:     stg,
		recorder:    rec,
		transcriber: tr,
		analyzer:    an,
		policies:    policies,
	}
}

func (u *usecase) CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error) {
	if req.SourceLink == "" {
		return nil, entity.ErrSourceLinkMissing
	}
	if req.DisplayName == "" {
		req.DisplayName = defaultDisplayName
	}
	if req.OrganizerName == "" {
		req.OrganizerName = defaultOrganizerName
	}
	return u.storage.CreateMeeting(ctx, req)
}

func (u *usecase) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	return u.storage.GetMeeting(ctx, id)
}

func (u *usecase) ListMeetings(ctx context.Context) ([]*entity.Meeting, error) {
	return u.storage.ListMeetings(ctx)
}

// ProcessMeeting drives one processing run: acquire a recording, transcribe
// it, analyze the transcript, and mark the meeting completed. The storage
// lease taken by BeginProcessing rejects runs for completed meetings and
// concurrent triggers for the same identifier.
func (u *usecase) ProcessMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	log := logger.FromContext(ctx)

	m, err := u.storage.BeginProcessing(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info("processing meeting",
		"id", m.ID,
		"source_link", m.SourceLink)

	recording, err := u.recorder.JoinAndRecord(ctx, m.SourceLink, m.OrganizerName)
	if err != nil {
		if u.policies.Recording == PolicyDegrade {
			log.Warn("recording stage degraded, continuing without media",
				"id", m.ID, "error", err)
			recording = nil
		} else {
			return nil, u.fail(ctx, m.ID, "recording", err)
		}
	}
	if recording != nil {
		if err := u.storage.SaveRecording(ctx, m.ID, recording.AudioPath, recording.DurationSeconds); err != nil {
			return nil, u.fail(ctx, m.ID, "recording", err)
		}
		log.Debug("recording acquired",
			"id", m.ID,
			"bot_id", recording.BotID,
			"audio_path", recording.AudioPath,
			"pending", recording.Pending)
	}

	var transcript string
	if recording != nil {
		transcript, err = u.transcriber.TranscribeWithSpeakers(ctx, recording.AudioPath)
		if err != nil {
			if u.policies.Transcription == PolicyDegrade {
				log.Warn("transcription stage degraded, continuing without transcript",
					"id", m.ID, "error", err)
				transcript = ""
			} else {
				return nil, u.fail(ctx, m.ID, "transcription", err)
			}
		}
		if transcript != "" {
			if err := u.storage.SaveTranscript(ctx, m.ID, transcript); err != nil {
				return nil, u.fail(ctx, m.ID, "transcription", err)
			}
			log.Debug("transcript saved", "id", m.ID, "length", len(transcript))
		}
	}

	var analysis *entity.AnalysisResult
	if transcript != "" {
		analysis, err = u.analyzer.Analyze(ctx, transcript, m.DisplayName)
		if err != nil {
			if u.policies.Analysis == PolicyDegrade {
				log.Warn("analysis stage degraded", "id", m.ID, "error", err)
				analysis = &entity.AnalysisResult{Error: err.Error()}
			} else {
				return nil, u.fail(ctx, m.ID, "analysis", err)
			}
		}
	}

	final, err := u.storage.Complete(ctx, m.ID, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to mark meeting completed: %w", err)
	}
	log.Info("meeting processed", "id", final.ID, "status", final.Status)
	return final, nil
}

func (u *usecase) TranscribeFile(ctx context.Context, audioPath string) (string, error) {
	return u.transcriber.Transcribe(ctx, audioPath)
}

// fail records the stage error on the meeting and returns it to the caller.
// The stored message is the raw stage error; the wrapping names the stage
// for the HTTP response.
func (u *usecase) fail(ctx context.Context, id, stage string, err error) error {
	log := logger.FromContext(ctx)
	if ferr := u.storage.Fail(ctx, id, err.Error()); ferr != nil {
		log.Error("failed to record meeting failure", "id", id, "error", ferr)
	}
	log.Error("processing run failed", "id", id, "stage", stage, "error", err)
	return fmt.Errorf("%s stage failed: %w", stage, err)
}
