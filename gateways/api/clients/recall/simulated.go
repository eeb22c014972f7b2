package recall

import (
	"context"
	"log/slog"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

// Simulated is the recorder selected when no recording-service key is
// configured. It pretends a bot joined the meeting and hands back a demo
// media path for the downstream stages.
type Simulated struct {
	log *slog.Logger
}

func NewSimulated() *Simulated {
	return &Simulated{log: slog.Default()}
}

func (s *Simulated) JoinAndRecord(ctx context.Context, sourceLink, requesterName string) (*entity.Recording, error) {
	s.log.Warn("simulated recording in use, configure RECALL_API_KEY to join real meetings",
		slog.String("source_link", sourceLink),
		slog.String("requester", requesterName))
	return &entity.Recording{
		BotID:     "simulated",
		AudioPath: "demo/sample_meeting.mp3",
		Pending:   true,
	}, nil
}
