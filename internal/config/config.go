package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Port            string        `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		AllowedOrigins  []string      `yaml:"allowedOrigins"`
	} `yaml:"http"`

	Telegram struct {
		BotToken    string `yaml:"botToken"`
		APIEndpoint string `yaml:"apiEndpoint"`
		// InitDataMaxAge bounds how old auth_date may be. Zero disables the
		// check, which lets a captured init data string be replayed forever.
		InitDataMaxAge time.Duration `yaml:"initDataMaxAge"`
		SendTimeout    time.Duration `yaml:"sendTimeout"`
	} `yaml:"telegram"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaults() Config {
	cfg := Config{}
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second
	cfg.HTTP.ShutdownTimeout = 10 * time.Second
	cfg.Telegram.InitDataMaxAge = time.Hour
	cfg.Telegram.SendTimeout = 10 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	// Environment overrides (expected in deploy).
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Port = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := firstEnv("TELEGRAM_BOT_TOKEN", "BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_API_ENDPOINT"); v != "" {
		cfg.Telegram.APIEndpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"TELEGRAM_INIT_DATA_MAX_AGE", &cfg.Telegram.InitDataMaxAge},
		{"TELEGRAM_SEND_TIMEOUT", &cfg.Telegram.SendTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if cfg.Telegram.BotToken == "" {
		return Config{}, errors.New("missing Telegram bot token (set telegram.botToken in config or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Telegram.InitDataMaxAge < 0 {
		return Config{}, errors.New("telegram.initDataMaxAge must not be negative")
	}
	if cfg.Telegram.SendTimeout <= 0 {
		return Config{}, errors.New("telegram.sendTimeout must be positive")
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
