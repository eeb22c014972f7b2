package entity

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	ErrNotFound          = errors.New("meeting not found")
	ErrSourceLinkMissing = errors.New("source_link is required")
	ErrAlreadyCompleted  = errors.New("meeting already processed")
	ErrAlreadyProcessing = errors.New("meeting is already being processed")
)

type Meeting struct {
	ID              string          `json:"id"`
	SourceLink      string          `json:"source_link"`
	DisplayName     string          `json:"display_name"`
	OrganizerName   string          `json:"organizer_name"`
	Status          Status          `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	Transcript      string          `json:"transcript,omitempty"`
	Analysis        *AnalysisResult `json:"analysis_result,omitempty"`
	AudioPath       string          `json:"audio_path,omitempty"`
	DurationSeconds int             `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

type CreateMeetingRequest struct {
	SourceLink    string `json:"source_link"`
	DisplayName   string `json:"display_name"`
	OrganizerName string `json:"organizer_name"`
}

// Recording is the media asset produced by the recording stage. AudioPath
// points at a local file, or at a pending placeholder when the remote
// session has not produced a downloadable asset yet.
type Recording struct {
	BotID           string
	AudioPath       string
	DurationSeconds int
	Pending         bool
}
