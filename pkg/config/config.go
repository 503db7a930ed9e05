package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Bot      BotConfig      `json:"bot"`
	Gateway  GatewayConfig  `json:"gateway"`
	MiniApp  MiniAppConfig  `json:"miniapp"`
	Logging  LoggingConfig  `json:"logging"`
	Sentinel SentinelConfig `json:"sentinel"`
}

type BotConfig struct {
	// Token is the bot credential. It is the only setting with no usable
	// default; startup aborts without it.
	Token string `json:"token" env:"WORDLYGATE_BOT_TOKEN"`
	// Mode is "polling" or "webhook".
	Mode string `json:"mode" env:"WORDLYGATE_BOT_MODE"`
	// PublicURL is the externally reachable base URL the webhook path is
	// appended to. Required in webhook mode only.
	PublicURL string `json:"public_url" env:"WORDLYGATE_BOT_PUBLIC_URL"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"WORDLYGATE_GATEWAY_HOST"`
	Port int    `json:"port" env:"WORDLYGATE_GATEWAY_PORT"`
}

type MiniAppConfig struct {
	GameURL string `json:"game_url" env:"WORDLYGATE_MINIAPP_GAME_URL"`
}

type LoggingConfig struct {
	Enabled       bool   `json:"enabled" env:"WORDLYGATE_LOGGING_ENABLED"`
	Dir           string `json:"dir" env:"WORDLYGATE_LOGGING_DIR"`
	Filename      string `json:"filename" env:"WORDLYGATE_LOGGING_FILENAME"`
	MaxSizeMB     int    `json:"max_size_mb" env:"WORDLYGATE_LOGGING_MAX_SIZE_MB"`
	RetentionDays int    `json:"retention_days" env:"WORDLYGATE_LOGGING_RETENTION_DAYS"`
}

type SentinelConfig struct {
	Enabled     bool `json:"enabled" env:"WORDLYGATE_SENTINEL_ENABLED"`
	IntervalSec int  `json:"interval_sec" env:"WORDLYGATE_SENTINEL_INTERVAL_SEC"`
}

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wordlygate")
}

func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

func DefaultConfig() *Config {
	configDir := GetConfigDir()
	return &Config{
		Bot: BotConfig{
			Token:     "",
			Mode:      ModePolling,
			PublicURL: "",
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		MiniApp: MiniAppConfig{
			GameURL: "https://wordly-game.example.com/",
		},
		Logging: LoggingConfig{
			Enabled:       true,
			Dir:           filepath.Join(configDir, "logs"),
			Filename:      "wordlygate.log",
			MaxSizeMB:     20,
			RetentionDays: 3,
		},
		Sentinel: SentinelConfig{
			Enabled:     true,
			IntervalSec: 60,
		},
	}
}

// LoadConfig layers defaults, the JSON config file (when present) and
// environment overrides, in that order. A missing file is not an error;
// a file with unknown fields is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := unmarshalConfigStrict(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshalConfigStrict(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid config: trailing JSON content")
		}
		return err
	}
	return nil
}

func (c *Config) LogFilePath() string {
	filename := c.Logging.Filename
	if filename == "" {
		filename = "wordlygate.log"
	}
	return filepath.Join(c.Logging.Dir, filename)
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}
