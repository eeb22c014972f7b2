package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage"
)

type stubRecorder struct {
	recording *entity.Recording
	err       error
}

func (s *stubRecorder) JoinAndRecord(ctx context.Context, sourceLink, requesterName string) (*entity.Recording, error) {
	return s.recording, s.err
}

type stubTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	return s.transcript, s.err
}

func (s *stubTranscriber) TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	return s.transcript, s.err
}

type stubAnalyzer struct {
	result *entity.AnalysisResult
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript, meetingLabel string) (*entity.AnalysisResult, error) {
	s.calls++
	return s.result, s.err
}

func okRecorder() *stubRecorder {
	return &stubRecorder{recording: &entity.Recording{
		BotID:           "bot-1",
		AudioPath:       "recordings/bot_1.mp4",
		DurationSeconds: 1800,
	}}
}

func newMeeting(t *testing.T, stg storage.Storage) *entity.Meeting {
	t.Helper()
	m, err := stg.CreateMeeting(context.Background(), &entity.CreateMeetingRequest{
		SourceLink:  "https://zoom.us/j/123",
		DisplayName: "Town Hall",
	})
	require.NoError(t, err)
	return m
}

func TestCreateMeetingRequiresSourceLink(t *testing.T) {
	usc := New(storage.NewMemory(), okRecorder(), &stubTranscriber{}, &stubAnalyzer{}, DefaultPolicies())

	_, err := usc.CreateMeeting(context.Background(), &entity.CreateMeetingRequest{})
	assert.ErrorIs(t, err, entity.ErrSourceLinkMissing)
}

func TestCreateMeetingDefaults(t *testing.T) {
	usc := New(storage.NewMemory(), okRecorder(), &stubTranscriber{}, &stubAnalyzer{}, DefaultPolicies())

	m, err := usc.CreateMeeting(context.Background(), &entity.CreateMeetingRequest{
		SourceLink: "https://meet.google.com/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Unnamed Meeting", m.DisplayName)
	assert.Equal(t, "Representative", m.OrganizerName)
	assert.Equal(t, entity.StatusPending, m.Status)
}

func TestProcessMeetingHappyPath(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{transcript: "Speaker 0: hello"}
	an := &stubAnalyzer{result: &entity.AnalysisResult{ExecutiveSummary: "greetings"}}
	usc := New(stg, okRecorder(), tr, an, DefaultPolicies())
	m := newMeeting(t, stg)

	final, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, final.Status)
	assert.Empty(t, final.ErrorMessage)
	require.NotNil(t, final.CompletedAt)
	require.NotNil(t, final.Analysis)
	assert.Equal(t, "greetings", final.Analysis.ExecutiveSummary)
	assert.Equal(t, 1, an.calls)

	stored, err := stg.GetMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Speaker 0: hello", stored.Transcript)
	assert.Equal(t, "recordings/bot_1.mp4", stored.AudioPath)
	assert.Equal(t, 1800, stored.DurationSeconds)
}

func TestProcessMeetingRecordingFailure(t *testing.T) {
	stg := storage.NewMemory()
	rec := &stubRecorder{err: errors.New("bot could not join")}
	tr := &stubTranscriber{transcript: "unused"}
	usc := New(stg, rec, tr, &stubAnalyzer{}, DefaultPolicies())
	m := newMeeting(t, stg)

	_, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording stage failed")

	stored, getErr := stg.GetMeeting(context.Background(), m.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Equal(t, "bot could not join", stored.ErrorMessage)
	assert.Empty(t, stored.Transcript)
	assert.Nil(t, stored.Analysis)
	assert.Equal(t, 0, tr.calls)
}

func TestProcessMeetingTranscriptionFailure(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{err: errors.New("audio file not found: demo.mp3")}
	an := &stubAnalyzer{}
	usc := New(stg, okRecorder(), tr, an, DefaultPolicies())
	m := newMeeting(t, stg)

	_, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription stage failed")

	stored, getErr := stg.GetMeeting(context.Background(), m.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Equal(t, "audio file not found: demo.mp3", stored.ErrorMessage)
	assert.Empty(t, stored.Transcript)
	assert.Nil(t, stored.Analysis)
	assert.Equal(t, 0, an.calls)
}

func TestProcessMeetingAnalysisDegrades(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{transcript: "Speaker 0: hello"}
	an := &stubAnalyzer{err: errors.New("model unavailable")}
	usc := New(stg, okRecorder(), tr, an, DefaultPolicies())
	m := newMeeting(t, stg)

	final, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, final.Status)
	require.NotNil(t, final.Analysis)
	assert.Equal(t, "model unavailable", final.Analysis.Error)
}

func TestProcessMeetingAnalysisFailPolicy(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{transcript: "Speaker 0: hello"}
	an := &stubAnalyzer{err: errors.New("model unavailable")}
	policies := DefaultPolicies()
	policies.Analysis = PolicyFail
	usc := New(stg, okRecorder(), tr, an, policies)
	m := newMeeting(t, stg)

	_, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis stage failed")

	stored, getErr := stg.GetMeeting(context.Background(), m.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Equal(t, "model unavailable", stored.ErrorMessage)
}

func TestProcessMeetingTranscriptionDegradeSkipsAnalysis(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{err: errors.New("provider down")}
	an := &stubAnalyzer{result: &entity.AnalysisResult{ExecutiveSummary: "unused"}}
	policies := DefaultPolicies()
	policies.Transcription = PolicyDegrade
	usc := New(stg, okRecorder(), tr, an, policies)
	m := newMeeting(t, stg)

	final, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, final.Status)
	assert.Nil(t, final.Analysis)
	assert.Equal(t, 0, an.calls)
}

func TestProcessMeetingRejectsCompleted(t *testing.T) {
	stg := storage.NewMemory()
	tr := &stubTranscriber{transcript: "Speaker 0: hello"}
	an := &stubAnalyzer{result: &entity.AnalysisResult{ExecutiveSummary: "first run"}}
	usc := New(stg, okRecorder(), tr, an, DefaultPolicies())
	m := newMeeting(t, stg)

	first, err := usc.ProcessMeeting(context.Background(), m.ID)
	require.NoError(t, err)

	_, err = usc.ProcessMeeting(context.Background(), m.ID)
	assert.ErrorIs(t, err, entity.ErrAlreadyCompleted)

	stored, getErr := stg.GetMeeting(context.Background(), m.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, "first run", stored.Analysis.ExecutiveSummary)
	assert.Equal(t, first.CompletedAt.Unix(), stored.CompletedAt.Unix())
}

func TestProcessMeetingRejectsInFlight(t *testing.T) {
	stg := storage.NewMemory()
	usc := New(stg, okRecorder(), &stubTranscriber{}, &stubAnalyzer{}, DefaultPolicies())
	m := newMeeting(t, stg)

	// Another worker already holds the processing lease.
	_, err := stg.BeginProcessing(context.Background(), m.ID)
	require.NoError(t, err)

	_, err = usc.ProcessMeeting(context.Background(), m.ID)
	assert.ErrorIs(t, err, entity.ErrAlreadyProcessing)
}

func TestProcessMeetingUnknown(t *testing.T) {
	usc := New(storage.NewMemory(), okRecorder(), &stubTranscriber{}, &stubAnalyzer{}, DefaultPolicies())

	_, err := usc.ProcessMeeting(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestTranscribeFile(t *testing.T) {
	tr := &stubTranscriber{transcript: "plain text"}
	usc := New(storage.NewMemory(), okRecorder(), tr, &stubAnalyzer{}, DefaultPolicies())

	text, err := usc.TranscribeFile(context.Background(), "upload.mp3")
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)
}
