// Wordlygate - Telegram gift-game gateway
// License: MIT
//
// Copyright (c) 2026 Wordlygate contributors

package main

import (
	"fmt"
	"os"

	"wordlygate/pkg/logger"
)

const version = "0.1.0"
const logo = "🎁"

var globalConfigPathOverride string

func main() {
	globalConfigPathOverride = detectConfigPathFromArgs(os.Args)

	for _, arg := range os.Args {
		if arg == "--debug" || arg == "-d" {
			logger.SetLevel(logger.DEBUG)
			break
		}
	}

	os.Args = normalizeCLIArgs(os.Args)

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCmd()
	case "version", "--version", "-v":
		fmt.Printf("%s wordlygate v%s\n", logo, version)
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printHelp()
		os.Exit(1)
	}
}
