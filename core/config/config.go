package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/whaaaley/cynthia/common"
)

// FileNames lists the config file names searched for, in order, from the
// working directory up to the filesystem root.
var FileNames = []string{"cynthia.config.yaml", "cynthia.config.yml", "cynthia.config.json"}

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrMissingAPIKey = errors.New("API key is required")
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// Spec formats accepted by generation.specFormat.
const (
	SpecFormatAuto    = "auto"
	SpecFormatSuites  = "suites"
	SpecFormatFeature = "feature"
	SpecFormatFlat    = "flat"
)

type Config struct {
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Generation GenerationConfig `yaml:"generation"`
	Testing    TestingConfig    `yaml:"testing"`
	CLI        CLIConfig        `yaml:"cli"`
	Analysis   AnalysisConfig   `yaml:"analysis"`

	// Environment only.
	APIKey string     `yaml:"-"`
	Log    LogConfig  `yaml:"-"`
	OTel   OTelConfig `yaml:"-"`

	// Path is the config file that was loaded, empty when running on defaults.
	Path string `yaml:"-"`
}

type OpenAIConfig struct {
	Model       string  `yaml:"model" validate:"required"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   *int    `yaml:"maxTokens" validate:"omitempty,gt=0"`
	Seed        *int64  `yaml:"seed"`
	BaseURL     string  `yaml:"baseURL"`
}

type GenerationConfig struct {
	MaxRetries int    `yaml:"maxRetries" validate:"gte=0,lte=10"`
	SpecFormat string `yaml:"specFormat" validate:"oneof=auto suites feature flat"`
	// Provider selects the chat API; the openai section configures either.
	Provider string `yaml:"provider" validate:"oneof=openai anthropic"`
}

type TestingConfig struct {
	RunTestsAfterGeneration bool   `yaml:"runTestsAfterGeneration"`
	Deno                    string `yaml:"deno" validate:"required"`
}

type CLIConfig struct {
	ConfirmGenerations bool `yaml:"confirmGenerations"`
}

type AnalysisConfig struct {
	// SystemUnderTest is the call name that invokes the implementation inside
	// an it() body, e.g. `const result = testFn(input)`.
	SystemUnderTest string `yaml:"systemUnderTest" validate:"required"`
}

type LogConfig struct {
	Level  string
	Format string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Default returns the configuration used when no config file is present.
// The seed defaults to the load time in milliseconds.
func Default() *Config {
	seed := time.Now().UnixMilli()
	return &Config{
		OpenAI: OpenAIConfig{
			Model:       DefaultOpenAIModel,
			Temperature: 0,
			Seed:        &seed,
		},
		Generation: GenerationConfig{
			MaxRetries: 3,
			SpecFormat: SpecFormatAuto,
			Provider:   ProviderOpenAI,
		},
		Testing: TestingConfig{
			RunTestsAfterGeneration: true,
			Deno:                    "deno",
		},
		CLI: CLIConfig{
			ConfirmGenerations: false,
		},
		Analysis: AnalysisConfig{
			SystemUnderTest: "testFn",
		},
	}
}

// Load builds the configuration for one process. It reads .env from cwd
// (existing environment variables win), then the nearest config file,
// then validates the result. A missing config file is not an error.
func Load(cwd string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(cwd, ".env"))

	cfg := Default()

	path, err := findConfigFile(cwd)
	if err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	if cfg.Generation.Provider == ProviderAnthropic {
		cfg.APIKey = getEnv("ANTHROPIC_API_KEY", "")
		if cfg.OpenAI.Model == DefaultOpenAIModel {
			cfg.OpenAI.Model = DefaultAnthropicModel
		}
	} else {
		cfg.APIKey = getEnv("OPENAI_API_KEY", "")
		if baseURL := getEnv("OPENAI_BASE_URL", ""); baseURL != "" {
			cfg.OpenAI.BaseURL = baseURL
		}
	}
	if retries, ok := getEnvInt("CYNTHIA_MAX_RETRIES"); ok {
		cfg.Generation.MaxRetries = retries
	}
	cfg.Log = LogConfig{
		Level:  getEnv("CYNTHIA_LOG_LEVEL", "info"),
		Format: getEnv("CYNTHIA_LOG_FORMAT", "text"),
	}
	cfg.OTel = OTelConfig{
		Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "cynthia"),
		ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges on the file-backed sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RequireAPIKey reports the missing credential before any generation attempt.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set %s", ErrMissingAPIKey, c.APIKeyEnv())
	}
	return nil
}

// APIKeyEnv names the environment variable holding the credential.
func (c *Config) APIKeyEnv() string {
	if c.Generation.Provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	// Decoding onto the defaults keeps every key the file leaves out.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// findConfigFile returns the config file closest to cwd. FileNames order
// breaks ties within one directory.
func findConfigFile(cwd string) (string, error) {
	best := ""
	for _, name := range FileNames {
		path, err := common.FindUp(cwd, name, false)
		if err != nil {
			continue
		}
		if best == "" || len(filepath.Dir(path)) > len(filepath.Dir(best)) {
			best = path
		}
	}
	if best == "" {
		return "", common.ErrNotFound
	}
	return best, nil
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string) (int, bool) {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i, true
		}
	}
	return 0, false
}
