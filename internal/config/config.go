package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Line struct {
		ChannelSecret      string `yaml:"channel_secret"`
		ChannelAccessToken string `yaml:"channel_access_token"`
		MaxContentBytes    int64  `yaml:"max_content_bytes"`
	} `yaml:"line"`
	Quiz struct {
		TTL           string   `yaml:"ttl"`
		CaptureGrace  string   `yaml:"capture_grace"`
		Timezone      string   `yaml:"timezone"`
		AudioBaseURL  string   `yaml:"audio_base_url"`
		AudioDuration string   `yaml:"audio_duration"`
		AudioPrompt   string   `yaml:"audio_prompt"`
		AudioSamples  []string `yaml:"audio_samples"`
	} `yaml:"quiz"`
	Images struct {
		MatchThreshold float64 `yaml:"match_threshold"`
		MaxImages      int     `yaml:"max_images"`
	} `yaml:"images"`
	Links struct {
		HowToPlay string `yaml:"how_to_play"`
		QuizList  string `yaml:"quiz_list"`
		Ranking   string `yaml:"ranking"`
	} `yaml:"links"`
	Sweep struct {
		Interval    string `yaml:"interval"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"sweep"`
}

// Load reads YAML config from path and applies environment overrides. A missing file is
// not an error so the bot can run from the environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"PORT", &c.Server.Port},
		{"LINE_CHANNEL_SECRET", &c.Line.ChannelSecret},
		{"LINE_CHANNEL_ACCESS_TOKEN", &c.Line.ChannelAccessToken},
		{"POSTGRES_URL", &c.Postgres.URL},
		{"REDIS_ADDR", &c.Redis.Addr},
		{"SQLITE_PATH", &c.SQLite.Path},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
}

// Location resolves quiz.timezone, defaulting to Asia/Tokyo.
func (c Config) Location() (*time.Location, error) {
	name := c.Quiz.Timezone
	if name == "" {
		name = "Asia/Tokyo"
	}
	return time.LoadLocation(name)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
