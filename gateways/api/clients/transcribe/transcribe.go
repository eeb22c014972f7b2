package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotConfigured is returned when no transcription provider is available.
var ErrNotConfigured = errors.New("no transcription provider configured")

// NotFoundError is returned when the media asset to transcribe is absent.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("audio file not found: %s", e.Path)
}

// ServiceError is a non-success response from a transcription provider.
type ServiceError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s transcription failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Provider is a single speech-to-text backend.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error)
	SupportsDiarization() bool
	Name() string
}

// Selector holds providers in priority order. The ranking is decided at
// construction time from configured credentials; the selector itself never
// inspects the environment.
type Selector struct {
	providers []Provider
	log       *slog.Logger
}

func NewSelector(providers ...Provider) *Selector {
	log := slog.Default()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	log.Debug("creating transcription selector", slog.Any("providers", names))
	return &Selector{
		providers: providers,
		log:       log,
	}
}

// Transcribe runs the highest-ranked provider.
func (s *Selector) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if len(s.providers) == 0 {
		return "", ErrNotConfigured
	}

	p := s.providers[0]
	s.log.Info("transcribing audio",
		slog.String("provider", p.Name()),
		slog.String("audio_path", audioPath))

	text, err := p.Transcribe(ctx, audioPath)
	if err != nil {
		s.log.Error("transcription failed",
			slog.String("provider", p.Name()),
			slog.String("error", err.Error()))
		return "", err
	}
	s.log.Info("transcription complete",
		slog.String("provider", p.Name()),
		slog.Int("length", len(text)))
	return text, nil
}

// TranscribeWithSpeakers runs the highest-ranked provider that supports
// diarization, falling back to a plain transcript when none does.
func (s *Selector) TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error) {
	if len(s.providers) == 0 {
		return "", ErrNotConfigured
	}

	for _, p := range s.providers {
		if !p.SupportsDiarization() {
			continue
		}
		s.log.Info("transcribing audio with speaker labels",
			slog.String("provider", p.Name()),
			slog.String("audio_path", audioPath))
		return p.TranscribeWithSpeakers(ctx, audioPath)
	}

	s.log.Debug("no diarizing provider configured, falling back to plain transcript")
	return s.Transcribe(ctx, audioPath)
}
