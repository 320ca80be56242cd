package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderNone   LLMProvider = ""
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	// OwnerChatID receives the scheduled weekly report. Zero disables it.
	OwnerChatID int64 `env:"OWNER_CHAT_ID"`

	// Journal memory
	MemoryBackend   string `env:"MEMORY_BACKEND" envDefault:"file"`
	MemoryFilePath  string `env:"MEMORY_FILE_PATH" envDefault:"data/apim_memory.json"`
	MemoryBadgerDir string `env:"MEMORY_BADGER_DIR" envDefault:"data/badger"`

	// Questionnaire log and classifier weights
	HistoryFilePath string `env:"HISTORY_FILE_PATH" envDefault:"data/historial.jsonl"`
	ModelFilePath   string `env:"MODEL_FILE_PATH" envDefault:"data/dojo_model.json"`

	// Weekly report
	ReportWindow     int    `env:"REPORT_WINDOW" envDefault:"5"`
	WeeklyReportCron string `env:"WEEKLY_REPORT_CRON" envDefault:"0 21 * * 0"`

	// Dojo training
	TrainOnStartup    bool    `env:"TRAIN_ON_STARTUP" envDefault:"true"`
	TrainEpochs       int     `env:"TRAIN_EPOCHS" envDefault:"20"`
	TrainBatchSize    int     `env:"TRAIN_BATCH_SIZE" envDefault:"8"`
	TrainLearningRate float64 `env:"TRAIN_LEARNING_RATE" envDefault:"0.001"`

	// LLM narration of weekly reports. Empty provider disables it.
	LLMProvider      LLMProvider `env:"LLM_PROVIDER"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

// Parse reads the config from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
