package sentinel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wordlygate/pkg/config"
	"wordlygate/pkg/lifecycle"
	"wordlygate/pkg/logger"
)

// DeliveryChecker reports delivery-side problems, such as a webhook
// registration drifting away from the configured target.
type DeliveryChecker interface {
	VerifyDelivery(ctx context.Context) []string
}

type AlertFunc func(msg string)

// Service is a background watchdog. It observes and alerts; it never
// restarts or re-registers anything itself.
type Service struct {
	cfgPath    string
	interval   time.Duration
	delivery   DeliveryChecker
	onAlert    AlertFunc
	runner     *lifecycle.LoopRunner
	mu         sync.RWMutex
	lastAlerts map[string]time.Time
}

func NewService(cfgPath string, intervalSec int, delivery DeliveryChecker, onAlert AlertFunc) *Service {
	if intervalSec <= 0 {
		intervalSec = 60
	}
	return &Service{
		cfgPath:    cfgPath,
		interval:   time.Duration(intervalSec) * time.Second,
		delivery:   delivery,
		onAlert:    onAlert,
		runner:     lifecycle.NewLoopRunner(),
		lastAlerts: map[string]time.Time{},
	}
}

func (s *Service) Start() {
	if !s.runner.Start(s.loop) {
		return
	}
	logger.InfoCF("sentinel", "Sentinel started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

func (s *Service) Stop() {
	if !s.runner.Stop() {
		return
	}
	logger.InfoC("sentinel", "Sentinel stopped")
}

func (s *Service) loop(stopCh <-chan struct{}) {
	tk := time.NewTicker(s.interval)
	defer tk.Stop()

	s.runChecks()
	for {
		select {
		case <-stopCh:
			return
		case <-tk.C:
			s.runChecks()
		}
	}
}

func (s *Service) runChecks() {
	issues := s.checkConfig()
	issues = append(issues, s.checkLogs()...)
	issues = append(issues, s.checkDelivery()...)

	if len(issues) == 0 {
		return
	}

	for _, issue := range issues {
		s.alert(issue)
	}
}

func (s *Service) checkConfig() []string {
	if s.cfgPath == "" {
		return nil
	}
	if _, err := os.Stat(s.cfgPath); err != nil {
		// The process may legitimately run on env vars alone.
		return nil
	}

	cfg, err := config.LoadConfig(s.cfgPath)
	if err != nil {
		return []string{fmt.Sprintf("sentinel: config parse failed: %v", err)}
	}

	verrs := config.Validate(cfg)
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, fmt.Sprintf("sentinel: config validation issue: %v", e))
	}
	return out
}

func (s *Service) checkLogs() []string {
	if s.cfgPath == "" {
		return nil
	}
	cfg, err := config.LoadConfig(s.cfgPath)
	if err != nil || !cfg.Logging.Enabled {
		return nil
	}
	logDir := filepath.Clean(filepath.Dir(cfg.LogFilePath()))
	if _, err := os.Stat(logDir); err != nil {
		return []string{fmt.Sprintf("sentinel: log dir missing: %s", logDir)}
	}
	return nil
}

func (s *Service) checkDelivery() []string {
	if s.delivery == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.delivery.VerifyDelivery(ctx)
}

func (s *Service) alert(msg string) {
	now := time.Now()
	s.mu.Lock()
	last, ok := s.lastAlerts[msg]
	if ok && now.Sub(last) < 5*time.Minute {
		s.mu.Unlock()
		return
	}
	s.lastAlerts[msg] = now
	s.mu.Unlock()

	logger.WarnCF("sentinel", msg, nil)
	if s.onAlert != nil {
		s.onAlert(msg)
	}
}
