package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate returns configuration problems found in cfg.
// It does not mutate cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	if strings.TrimSpace(cfg.Bot.Token) == "" {
		errs = append(errs, fmt.Errorf("bot.token is required"))
	}

	switch cfg.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if strings.TrimSpace(cfg.Bot.PublicURL) == "" {
			errs = append(errs, fmt.Errorf("bot.public_url is required when bot.mode=webhook"))
		} else if u, err := url.Parse(cfg.Bot.PublicURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("bot.public_url must be an absolute http(s) URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("bot.mode must be one of: %s, %s", ModePolling, ModeWebhook))
	}

	if cfg.Gateway.Port <= 0 || cfg.Gateway.Port > 65535 {
		errs = append(errs, fmt.Errorf("gateway.port must be in 1..65535"))
	}

	if strings.TrimSpace(cfg.MiniApp.GameURL) == "" {
		errs = append(errs, fmt.Errorf("miniapp.game_url is required"))
	}

	if cfg.Logging.Enabled {
		if cfg.Logging.Dir == "" {
			errs = append(errs, fmt.Errorf("logging.dir is required when logging.enabled=true"))
		}
		if cfg.Logging.Filename == "" {
			errs = append(errs, fmt.Errorf("logging.filename is required when logging.enabled=true"))
		}
		if cfg.Logging.MaxSizeMB <= 0 {
			errs = append(errs, fmt.Errorf("logging.max_size_mb must be > 0"))
		}
		if cfg.Logging.RetentionDays <= 0 {
			errs = append(errs, fmt.Errorf("logging.retention_days must be > 0"))
		}
	}

	if cfg.Sentinel.Enabled && cfg.Sentinel.IntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("sentinel.interval_sec must be > 0 when sentinel.enabled=true"))
	}

	return errs
}
