package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full environment surface of the API service. Missing
// credentials never fail startup: each absent key selects the matching
// simulated provider or the in-memory store instead.
type Config struct {
	Port          int    `env:"PORT" env-default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	ProcessSecret string `env:"PROCESS_SECRET"`

	RecallAPIKey       string        `env:"RECALL_API_KEY"`
	RecallPollInterval time.Duration `env:"RECALL_POLL_INTERVAL" env-default:"5s"`
	RecallMaxPolls     int           `env:"RECALL_MAX_POLLS" env-default:"60"`
	RecordingsDir      string        `env:"RECORDINGS_DIR" env-default:"recordings"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`

	LLMAPIKey string `env:"LLM_API_KEY"`
	LLMModel  string `env:"LLM_MODEL" env-default:"gpt-4o"`

	RecordingStagePolicy     string `env:"RECORDING_STAGE_POLICY" env-default:"fail"`
	TranscriptionStagePolicy string `env:"TRANSCRIPTION_STAGE_POLICY" env-default:"fail"`
	AnalysisStagePolicy      string `env:"ANALYSIS_STAGE_POLICY" env-default:"degrade"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return &cfg
}
