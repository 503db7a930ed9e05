package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordlygate/pkg/bus"
	"wordlygate/pkg/channels"
	"wordlygate/pkg/config"
	"wordlygate/pkg/menu"
	"wordlygate/pkg/miniapp"
	"wordlygate/pkg/router"
	"wordlygate/pkg/sentinel"
	"wordlygate/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func runCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if verrs := config.Validate(cfg); len(verrs) > 0 {
		fmt.Println("Invalid configuration:")
		for _, e := range verrs {
			fmt.Printf("  - %v\n", e)
		}
		os.Exit(1)
	}

	catalog, err := menu.NewCatalog(cfg.MiniApp.GameURL)
	if err != nil {
		// A dangling navigation target is a programming error; refuse to
		// serve menus that press into nowhere.
		fmt.Printf("Error building menu catalog: %v\n", err)
		os.Exit(1)
	}

	events := bus.NewEventBus()

	channel, err := channels.NewTelegramChannel(cfg.Bot.Token, channels.Mode(cfg.Bot.Mode), cfg.Bot.PublicURL, events)
	if err != nil {
		fmt.Printf("Error creating Telegram channel: %v\n", err)
		os.Exit(1)
	}

	conversations := router.NewRouter(catalog, channel, channel, events)
	gateway := miniapp.NewGateway()
	httpServer := server.NewServer(cfg, gateway, channel)

	var sentinelService *sentinel.Service
	if cfg.Sentinel.Enabled {
		sentinelService = sentinel.NewService(getConfigPath(), cfg.Sentinel.IntervalSec, channel, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Start(); err != nil {
		fmt.Printf("Error starting HTTP server: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ HTTP server listening on %s\n", cfg.ListenAddr())

	if err := channel.Start(ctx); err != nil {
		fmt.Printf("Error starting Telegram channel: %v\n", err)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		httpServer.Stop(stopCtx)
		stopCancel()
		os.Exit(1)
	}
	fmt.Printf("✓ Telegram channel started (%s mode)\n", cfg.Bot.Mode)

	go conversations.Run(ctx)
	fmt.Println("✓ Conversation router started")

	if sentinelService != nil {
		sentinelService.Start()
		fmt.Println("✓ Sentinel service started")
	}

	fmt.Println("Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	if sentinelService != nil {
		sentinelService.Stop()
	}
	if err := channel.Stop(stopCtx); err != nil {
		fmt.Printf("Warning: channel stop: %v\n", err)
	}
	if err := httpServer.Stop(stopCtx); err != nil {
		fmt.Printf("Warning: server stop: %v\n", err)
	}
	events.Close()
	cancel()
	fmt.Println("✓ Gateway stopped")
}
