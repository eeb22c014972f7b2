package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joeleesuh/delegate-ai/pkg/gen"
	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

type memoryStorage struct {
	mu       sync.RWMutex
	meetings map[string]*entity.Meeting
	order    map[string]int
	seq      int
	ids      gen.UUIDGenerator
}

// NewMemory returns an in-memory meeting store. It backs the service when
// no database connection string is configured and is also used in tests.
func NewMemory() Storage {
	return &memoryStorage{
		meetings: make(map[string]*entity.Meeting),
		order:    make(map[string]int),
		ids:      gen.UUID(),
	}
}

func (s *memoryStorage) CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &entity.Meeting{
		ID:            s.ids.Next().String(),
		SourceLink:    req.SourceLink,
		DisplayName:   req.DisplayName,
		OrganizerName: req.OrganizerName,
		Status:        entity.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	s.seq++
	s.meetings[m.ID] = m
	s.order[m.ID] = s.seq
	return clone(m), nil
}

func (s *memoryStorage) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, entity.ErrNotFound
	}
	return clone(m), nil
}

func (s *memoryStorage) ListMeetings(ctx context.Context) ([]*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		out = append(out, clone(m))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryStorage) BeginProcessing(ctx context.Context, id string) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, entity.ErrNotFound
	}

	switch m.Status {
	case entity.StatusCompleted:
		return nil, entity.ErrAlreadyCompleted
	case entity.StatusProcessing:
		return nil, entity.ErrAlreadyProcessing
	}

	m.Status = entity.StatusProcessing
	m.ErrorMessage = ""
	m.Transcript = ""
	m.Analysis = nil
	m.AudioPath = ""
	m.DurationSeconds = 0
	m.CompletedAt = nil
	return clone(m), nil
}

func (s *memoryStorage) SaveRecording(ctx context.Context, id, audioPath string, durationSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return entity.ErrNotFound
	}

	m.AudioPath = audioPath
	m.DurationSeconds = durationSeconds
	return nil
}

func (s *memoryStorage) SaveTranscript(ctx context.Context, id, transcript string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return entity.ErrNotFound
	}

	m.Transcript = transcript
	return nil
}

func (s *memoryStorage) Complete(ctx context.Context, id string, analysis *entity.AnalysisResult) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, entity.ErrNotFound
	}

	now := time.Now().UTC()
	m.Status = entity.StatusCompleted
	m.Analysis = analysis
	m.ErrorMessage = ""
	m.CompletedAt = &now
	return clone(m), nil
}

func (s *memoryStorage) Fail(ctx context.Context, id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return entity.ErrNotFound
	}

	m.Status = entity.StatusFailed
	m.ErrorMessage = message
	m.Analysis = nil
	return nil
}

func clone(m *entity.Meeting) *entity.Meeting {
	c := *m
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	if m.Analysis != nil {
		a := *m.Analysis
		c.Analysis = &a
	}
	return &c
}
