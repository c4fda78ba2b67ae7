package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Events   EventsConfig   `yaml:"events"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AnalyzerConfig defines how document analysis calls the LLM.
type AnalyzerConfig struct {
	GeminiModel string `yaml:"gemini_model"`

	// RequestTimeoutSeconds bounds a single model call.
	// 0 or less falls back to 60 seconds.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// MaxOutputTokens bounds the completion size.
	// 0 or less falls back to 2048.
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

type MongoConfig struct {
	// URI and DBName may be left empty and supplied through the
	// MONGO_URI / MONGO_DB_NAME environment variables instead.
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// EventsConfig controls publication of analysis lifecycle events.
// When disabled the service runs without a Kafka broker.
type EventsConfig struct {
	Enabled bool `yaml:"enabled"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
