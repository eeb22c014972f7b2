package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

const (
	whisperDefaultBaseURL = "https://api.openai.com"
	whisperDefaultModel   = "whisper-1"
)

// Whisper transcribes audio through the OpenAI audio transcriptions API.
// It does not diarize; the speaker variant returns a plain transcript.
type Whisper struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

func NewWhisper(apiKey, baseURL string) *Whisper {
	log := slog.Default()
	if baseURL == "" {
		baseURL = whisperDefaultBaseURL
	}
	log.Debug("creating whisper provider",
		slog.String("base_url", baseURL),
		slog.Bool("api_key_set", apiKey != ""))
	return &Whisper{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      whisperDefaultModel,
		httpClient: &http.Client{},
		log:        log,
	}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) SupportsDiarization() bool { return false }

type whisperResponse struct {
	Text string `json:"text"`
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: audioPath}
		}
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("failed to copy audio into request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w.log.Debug("sending audio to whisper", slog.String("audio_path", audioPath))
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		w.log.Error("whisper returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(respBody)))
		return "", &ServiceError{Provider: w.Name(), StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode whisper response: %w", err)
	}
	return out.Text, nil
}

func (w *Whisper) TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error) {
	return w.Transcribe(ctx, audioPath)
}
