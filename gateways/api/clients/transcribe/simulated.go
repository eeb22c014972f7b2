package transcribe

import (
	"context"
	"log/slog"
)

// SampleTranscript is served by the simulated provider so the pipeline can
// run end to end without speech-to-text credentials.
const SampleTranscript = `Speaker 1: Good afternoon everyone, thanks for joining today's meeting. I wanted to discuss some concerns that have been raised by graduate students.

Speaker 2: Thank you for having us. I think the biggest issue right now is mental health resources. Many students are waiting 3 to 4 weeks for counseling appointments.

Speaker 3: I agree. As a PhD student, the stress of research combined with long wait times makes things really difficult. We need more specialized support for doctoral students.

Speaker 1: That's really concerning. Have others experienced this as well?

Speaker 4: Yes, I've heard similar feedback from students in my department. The wait times are definitely a problem.

Speaker 2: Another issue is housing costs. Many students are spending over 60% of their stipend on rent. It's becoming financially unsustainable.

Speaker 5: Absolutely. I had to move further away from campus because I couldn't afford the rent near MIT. Now my commute is over an hour each way.

Speaker 1: These are critical issues. Let me take these back to the council and we'll work on proposals for both mental health resources and housing support.

Speaker 3: Thank you. We appreciate you listening to our concerns.

Speaker 1: Of course. I'll follow up with everyone after next week's council meeting.`

// Simulated is the provider selected when no speech-to-text key is
// configured. It ignores the audio path and returns a fixed transcript.
type Simulated struct {
	log *slog.Logger
}

func NewSimulated() *Simulated {
	return &Simulated{log: slog.Default()}
}

func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) SupportsDiarization() bool { return true }

func (s *Simulated) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.log.Warn("simulated transcription in use, configure DEEPGRAM_API_KEY or OPENAI_API_KEY for real output",
		slog.String("audio_path", audioPath))
	return SampleTranscript, nil
}

func (s *Simulated) TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error) {
	return s.Transcribe(ctx, audioPath)
}
