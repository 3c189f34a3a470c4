// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	JobTTL   time.Duration `yaml:"job_ttl"` // retention of finished job records
}

type AIConfig struct {
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	OpenAIKey    string `yaml:"openai_key"`
	DefaultModel string `yaml:"default_model"`
	MaxOutTokens int    `yaml:"max_out_tokens"`
}

type CollectorsConfig struct {
	TavilyKey         string        `yaml:"tavily_key"`
	ScrapeCreatorsKey string        `yaml:"scrapecreators_key"`
	FirecrawlKey      string        `yaml:"firecrawl_key"`
	CallTimeout       time.Duration `yaml:"call_timeout"` // per external call
}

type ResearchConfig struct {
	Workers     int           `yaml:"workers"`      // pipeline worker pool size
	StepTimeout time.Duration `yaml:"step_timeout"` // per pipeline step
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Collectors CollectorsConfig `yaml:"collectors"`
	Research   ResearchConfig   `yaml:"research"`
	Notify     NotifyConfig     `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.JobTTL <= 0 {
		cfg.Redis.JobTTL = 24 * time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.MaxOutTokens <= 0 {
		cfg.AI.MaxOutTokens = 8192
	}
	if cfg.Collectors.CallTimeout <= 0 {
		cfg.Collectors.CallTimeout = 60 * time.Second
	}
	if cfg.Research.Workers <= 0 {
		cfg.Research.Workers = 4
	}
	if cfg.Research.StepTimeout <= 0 {
		cfg.Research.StepTimeout = 2 * time.Minute
	}

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AI.GeminiKey == "" && cfg.AI.OpenAIKey == "" && !dev {
		return nil, errors.New("ai.gemini_key or ai.openai_key is required")
	}
	if cfg.Collectors.TavilyKey == "" && !dev {
		return nil, errors.New("collectors.tavily_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
