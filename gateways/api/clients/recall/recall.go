package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

const (
	defaultBaseURL       = "https://api.recall.ai/api/v1"
	defaultPollInterval  = 5 * time.Second
	defaultMaxPolls      = 60
	defaultRecordingsDir = "recordings"
)

// Bot status codes reported by the recording service.
const (
	statusInCallNotRecording = "in_call_not_recording"
	statusInCallRecording    = "in_call_recording"
	statusDone               = "done"
	statusFatal              = "fatal"
)

// ErrNotConfigured is returned when the client was built without an API key.
var ErrNotConfigured = errors.New("recording service API key is not configured")

// ServiceError is a non-success response from the recording service.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("recording service request failed with status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError is returned when the session did not reach a terminal state
// within the bounded polling window.
type TimeoutError struct {
	BotID  string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("recording session %s did not reach a terminal state within %s", e.BotID, e.Waited)
}

type Client struct {
	apiKey        string
	baseURL       string
	recordingsDir string
	pollInterval  time.Duration
	maxPolls      int
	httpClient    *http.Client
	log           *slog.Logger
}

type Config struct {
	APIKey        string
	BaseURL       string
	RecordingsDir string
	PollInterval  time.Duration
	MaxPolls      int
}

func New(cfg Config) *Client {
	log := slog.Default()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RecordingsDir == "" {
		cfg.RecordingsDir = defaultRecordingsDir
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = defaultMaxPolls
	}
	log.Debug("creating recall client",
		slog.String("base_url", cfg.BaseURL),
		slog.Bool("api_key_set", cfg.APIKey != ""),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.Int("max_polls", cfg.MaxPolls))
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		recordingsDir: cfg.RecordingsDir,
		pollInterval:  cfg.PollInterval,
		maxPolls:      cfg.MaxPolls,
		httpClient:    &http.Client{},
		log:           log,
	}
}

type createBotRequest struct {
	MeetingURL           string               `json:"meeting_url"`
	BotName              string               `json:"bot_name"`
	AutomaticLeave       automaticLeave       `json:"automatic_leave"`
	RecordingMode        string               `json:"recording_mode"`
	TranscriptionOptions transcriptionOptions `json:"transcription_options"`
}

type automaticLeave struct {
	WaitingRoomTimeout int `json:"waiting_room_timeout"`
	NooneJoinedTimeout int `json:"noone_joined_timeout"`
}

type transcriptionOptions struct {
	Provider string `json:"provider"`
}

// Bot is the recording session resource as reported by the service.
type Bot struct {
	ID            string         `json:"id"`
	VideoURL      string         `json:"video_url"`
	StatusChanges []statusChange `json:"status_changes"`
}

type statusChange struct {
	Code string `json:"code"`
}

// StatusCode returns the most recent status change code.
func (b *Bot) StatusCode() string {
	if len(b.StatusChanges) == 0 {
		return ""
	}
	return b.StatusChanges[len(b.StatusChanges)-1].Code
}

// JoinAndRecord creates a recording session for the meeting link, polls it
// until a terminal state, and downloads the media asset when the service
// already exposes one. For an in-flight recording it returns a pending
// placeholder path instead.
func (c *Client) JoinAndRecord(ctx context.Context, sourceLink, requesterName string) (*entity.Recording, error) {
	c.log.Info("JoinAndRecord called",
		slog.String("source_link", sourceLink),
		slog.String("requester", requesterName))

	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload := createBotRequest{
		MeetingURL: sourceLink,
		BotName:    fmt.Sprintf("DelegateAI (%s)", requesterName),
		AutomaticLeave: automaticLeave{
			WaitingRoomTimeout: 600,
			NooneJoinedTimeout: 600,
		},
		RecordingMode: "speaker_view",
		TranscriptionOptions: transcriptionOptions{
			Provider: "deepgram",
		},
	}

	c.log.Debug("creating recording bot")
	bot, err := c.createBot(ctx, payload)
	if err != nil {
		c.log.Error("failed to create recording bot", slog.String("error", err.Error()))
		return nil, err
	}
	c.log.Info("recording bot created", slog.String("bot_id", bot.ID))

	bot, err = c.waitForTerminalState(ctx, bot.ID)
	if err != nil {
		return nil, err
	}

	if bot.VideoURL != "" {
		c.log.Debug("media URL available, downloading", slog.String("bot_id", bot.ID))
		audioPath, err := c.downloadRecording(ctx, bot.VideoURL, bot.ID)
		if err != nil {
			return nil, err
		}
		c.log.Info("recording downloaded",
			slog.String("bot_id", bot.ID),
			slog.String("audio_path", audioPath))
		return &entity.Recording{BotID: bot.ID, AudioPath: audioPath}, nil
	}

	// The meeting is still in progress; hand back a placeholder the caller
	// can resolve once the session finishes.
	pending := filepath.Join(c.recordingsDir, fmt.Sprintf("bot_%s_pending.mp4", bot.ID))
	c.log.Info("media not ready yet, returning pending placeholder",
		slog.String("bot_id", bot.ID),
		slog.String("audio_path", pending))
	return &entity.Recording{BotID: bot.ID, AudioPath: pending, Pending: true}, nil
}

func (c *Client) waitForTerminalState(ctx context.Context, botID string) (*Bot, error) {
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		bot, err := c.BotStatus(ctx, botID)
		if err != nil {
			c.log.Error("failed to poll bot status",
				slog.String("error", err.Error()),
				slog.String("bot_id", botID))
			return nil, err
		}

		code := bot.StatusCode()
		c.log.Debug("bot status polled",
			slog.String("bot_id", botID),
			slog.String("status", code),
			slog.Int("attempt", attempt+1))

		switch code {
		case statusInCallRecording:
			c.log.Info("bot is recording the meeting", slog.String("bot_id", botID))
			return bot, nil
		case statusDone, statusFatal:
			c.log.Info("recording session finished",
				slog.String("bot_id", botID),
				slog.String("status", code))
			return bot, nil
		case statusInCallNotRecording:
			c.log.Debug("bot joined, recording not started yet", slog.String("bot_id", botID))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	waited := time.Duration(c.maxPolls) * c.pollInterval
	c.log.Warn("bot never reached a terminal state",
		slog.String("bot_id", botID),
		slog.Duration("waited", waited))
	return nil, &TimeoutError{BotID: botID, Waited: waited}
}

// BotStatus fetches the current state of a recording session.
func (c *Client) BotStatus(ctx context.Context, botID string) (*Bot, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	resp, err := c.send(ctx, http.MethodGet, "/bot/"+botID, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var bot Bot
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode bot status: %w", err)
	}
	return &bot, nil
}

func (c *Client) createBot(ctx context.Context, payload createBotRequest) (*Bot, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bot request: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/bot", data, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var bot Bot
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode bot response: %w", err)
	}
	return &bot, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, wantStatus int) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("recording service request failed: %w", err)
	}

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.log.Error("recording service returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(respBody)))
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return resp, nil
}

func (c *Client) downloadRecording(ctx context.Context, mediaURL, botID string) (string, error) {
	if err := os.MkdirAll(c.recordingsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recordings dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	audioPath := filepath.Join(c.recordingsDir, fmt.Sprintf("bot_%s.mp4", botID))
	f, err := os.Create(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to create recording file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write recording file: %w", err)
	}
	return audioPath, nil
}
