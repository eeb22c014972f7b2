package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

const deepgramDefaultBaseURL = "https://api.deepgram.com"

// Deepgram transcribes prerecorded audio via the Deepgram listen API.
// It is ranked ahead of Whisper: lower latency, lower cost, and it supports
// speaker diarization.
type Deepgram struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewDeepgram(apiKey, baseURL string) *Deepgram {
	log := slog.Default()
	if baseURL == "" {
		baseURL = deepgramDefaultBaseURL
	}
	log.Debug("creating deepgram provider",
		slog.String("base_url", baseURL),
		slog.Bool("api_key_set", apiKey != ""))
	return &Deepgram{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
		log:        log,
	}
}

func (d *Deepgram) Name() string { return "deepgram" }

func (d *Deepgram) SupportsDiarization() bool { return true }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Speaker    int    `json:"speaker"`
			Transcript string `json:"transcript"`
		} `json:"utterances"`
	} `json:"results"`
}

func (d *Deepgram) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := d.listen(ctx, audioPath, false)
	if err != nil {
		return "", err
	}

	if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("deepgram returned no transcript alternatives")
	}
	return resp.Results.Channels[0].Alternatives[0].Transcript, nil
}

func (d *Deepgram) TranscribeWithSpeakers(ctx context.Context, audioPath string) (string, error) {
	resp, err := d.listen(ctx, audioPath, true)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(resp.Results.Utterances))
	for _, u := range resp.Results.Utterances {
		lines = append(lines, fmt.Sprintf("Speaker %d: %s", u.Speaker, u.Transcript))
	}
	d.log.Debug("deepgram utterances formatted", slog.Int("count", len(lines)))
	return strings.Join(lines, "\n\n"), nil
}

func (d *Deepgram) listen(ctx context.Context, audioPath string, utterances bool) (*deepgramResponse, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: audioPath}
		}
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	url := d.baseURL + "/v1/listen?model=nova-2&punctuate=true&language=en-US&diarize=true"
	if utterances {
		url += "&utterances=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, f)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/mp4")

	d.log.Debug("sending audio to deepgram", slog.String("audio_path", audioPath))
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		d.log.Error("deepgram returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(body)))
		return nil, &ServiceError{Provider: d.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode deepgram response: %w", err)
	}
	return &out, nil
}
