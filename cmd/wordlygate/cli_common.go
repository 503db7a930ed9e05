package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wordlygate/pkg/config"
	"wordlygate/pkg/logger"
)

func normalizeCLIArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := []string{args[0]}
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--debug" || arg == "-d" {
			continue
		}
		if arg == "--config" {
			if i+1 < len(args) {
				i++
			}
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			continue
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

func detectConfigPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" && i+1 < len(args) {
			return strings.TrimSpace(args[i+1])
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimSpace(strings.TrimPrefix(arg, "--config="))
		}
	}
	return ""
}

func printHelp() {
	fmt.Printf("%s wordlygate - Telegram gift-game gateway v%s\n\n", logo, version)
	fmt.Println("Usage: wordlygate <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run         Run the gateway in the foreground")
	fmt.Println("  version     Show version information")
	fmt.Println("  help        Show this help")
	fmt.Println()
	fmt.Println("Global options:")
	fmt.Println("  --config <path>         Use custom config file")
	fmt.Println("  --debug, -d             Enable debug logging")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  WORDLYGATE_BOT_TOKEN        Bot token (required)")
	fmt.Println("  WORDLYGATE_BOT_MODE         polling (default) or webhook")
	fmt.Println("  WORDLYGATE_BOT_PUBLIC_URL   Public base URL (webhook mode)")
	fmt.Println("  WORDLYGATE_GATEWAY_PORT     HTTP port (default 3000)")
}

func getConfigPath() string {
	if strings.TrimSpace(globalConfigPathOverride) != "" {
		return globalConfigPathOverride
	}
	if fromEnv := strings.TrimSpace(os.Getenv("WORDLYGATE_CONFIG")); fromEnv != "" {
		return fromEnv
	}
	return filepath.Join(config.GetConfigDir(), "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	if !cfg.Logging.Enabled {
		logger.DisableFileLogging()
		return
	}

	logFile := cfg.LogFilePath()
	if err := logger.EnableFileLogging(logFile, cfg.Logging.MaxSizeMB, cfg.Logging.RetentionDays); err != nil {
		fmt.Printf("Warning: failed to enable file logging: %v\n", err)
	}
}
