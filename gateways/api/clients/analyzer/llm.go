package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

const defaultModel = "gpt-4o"

// maxSummaryChars caps the raw-response excerpt kept when the model output
// cannot be parsed as structured analysis.
const maxSummaryChars = 500

const promptTemplate = `Analyze this meeting transcript and provide a comprehensive summary in JSON format.

Meeting: %s

Transcript:
%s

Please provide a JSON response with the following structure:
{
    "executive_summary": "Brief 2-3 sentence summary of the meeting",
    "key_topics": [
        {
            "topic": "Topic name",
            "description": "What was discussed",
            "time_spent": "Approximate time or importance"
        }
    ],
    "issues_identified": [
        {
            "title": "Issue title",
            "description": "Detailed description",
            "category": "mental_health|housing|funding|academic|career|other",
            "priority": "high|medium|low",
            "sentiment": "positive|neutral|negative",
            "mentioned_by": "Who raised it"
        }
    ],
    "action_items": [
        {
            "action": "What needs to be done",
            "priority": "high|medium|low",
            "owner": "Who should do it (if mentioned)"
        }
    ],
    "notable_quotes": [
        {
            "quote": "The actual quote",
            "speaker": "Who said it",
            "context": "Why it's important"
        }
    ],
    "sentiment_analysis": {
        "overall": "positive|mixed|negative",
        "breakdown": {
            "positive_percent": 0,
            "neutral_percent": 0,
            "negative_percent": 0
        },
        "explanation": "Brief explanation of the sentiment"
    },
    "recommendations": [
        "Specific actionable recommendation for the representative"
    ],
    "patterns": [
        "Any patterns or trends observed"
    ]
}

Provide only the JSON response, no additional text.`

// LLM analyzes transcripts through an OpenAI-compatible chat completion API.
type LLM struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewLLM(apiKey, baseURL, model string) *LLM {
	log := slog.Default()
	if model == "" {
		model = defaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	log.Debug("creating llm analyzer",
		slog.String("model", model),
		slog.Bool("api_key_set", apiKey != ""))
	return &LLM{
		client: &client,
		model:  model,
		log:    log,
	}
}

func (a *LLM) Analyze(ctx context.Context, transcript, meetingLabel string) (*entity.AnalysisResult, error) {
	a.log.Info("Analyze called",
		slog.String("meeting", meetingLabel),
		slog.Int("transcript_length", len(transcript)))

	prompt := fmt.Sprintf(promptTemplate, meetingLabel, transcript)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(4096),
	})
	if err != nil {
		a.log.Error("chat completion failed", slog.String("error", err.Error()))
		return &entity.AnalysisResult{Error: err.Error()}, nil
	}
	if len(resp.Choices) == 0 {
		a.log.Error("chat completion returned no choices")
		return &entity.AnalysisResult{Error: "language model returned no choices"}, nil
	}

	text := resp.Choices[0].Message.Content
	a.log.Debug("chat completion received",
		slog.Int("response_length", len(text)),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))

	result := parseAnalysis(text)
	if result.Error != "" {
		a.log.Warn("analysis degraded to partial result", slog.String("error", result.Error))
	} else {
		a.log.Info("meeting analysis complete",
			slog.Int("issues", len(result.IssuesIdentified)),
			slog.Int("action_items", len(result.ActionItems)))
	}
	return result, nil
}

func parseAnalysis(text string) *entity.AnalysisResult {
	var result entity.AnalysisResult
	if err := unmarshalRepaired([]byte(text), &result); err != nil {
		summary := text
		if len(summary) > maxSummaryChars {
			summary = summary[:maxSummaryChars]
		}
		return &entity.AnalysisResult{
			ExecutiveSummary: summary,
			Error:            "failed to parse structured analysis",
		}
	}
	return &result
}

// unmarshalRepaired unmarshals model output, attempting to repair malformed
// JSON before giving up.
func unmarshalRepaired(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
