// Wordlygate - Telegram gift-game gateway
// License: MIT
//
// Copyright (c) 2026 Wordlygate contributors

package channels

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoutil"

	"wordlygate/pkg/bus"
	"wordlygate/pkg/logger"
	"wordlygate/pkg/menu"
)

const (
	apiCallTimeout      = 10 * time.Second
	pollingRestartDelay = 5 * time.Second
)

// Mode selects how raw platform updates arrive. It is decided once at
// startup and never changes at runtime; the mode only determines delivery,
// never how updates are interpreted.
type Mode string

const (
	ModeWebhook Mode = "webhook"
	ModePolling Mode = "polling"
)

// WebhookPath builds the push-ingestion path. Embedding the bot token keeps
// the path unguessable, as the platform recommends.
func WebhookPath(token string) string {
	return "/webhook/" + token
}

// Status is the delivery state snapshot surfaced by the health endpoint.
type Status struct {
	Mode              Mode   `json:"mode"`
	Running           bool   `json:"running"`
	WebhookURL        string `json:"webhook_url,omitempty"`
	WebhookRegistered bool   `json:"webhook_registered"`
	LastError         string `json:"last_error,omitempty"`
}

// webhookAPI is the slice of the Telegram client used for delivery-mode
// registration. *telego.Bot satisfies it.
type webhookAPI interface {
	SetWebhook(ctx context.Context, params *telego.SetWebhookParams) error
	DeleteWebhook(ctx context.Context, params *telego.DeleteWebhookParams) error
	GetWebhookInfo(ctx context.Context) (*telego.WebhookInfo, error)
}

// TelegramChannel owns the bot client and the push-vs-pull decision. It
// normalizes both ingestion modes into the event bus and implements the
// router's send and ack capabilities.
type TelegramChannel struct {
	bot        *telego.Bot
	api        webhookAPI
	token      string
	events     *bus.EventBus
	mode       Mode
	webhookURL string

	runCancel  cancelGuard
	running    atomic.Bool
	registered atomic.Bool

	errMu   sync.Mutex
	lastErr string
}

func NewTelegramChannel(token string, mode Mode, publicURL string, events *bus.EventBus) (*TelegramChannel, error) {
	bot, err := telego.NewBot(token, telego.WithDefaultLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	c := &TelegramChannel{
		bot:    bot,
		api:    bot,
		token:  token,
		events: events,
		mode:   mode,
	}
	if mode == ModeWebhook {
		c.webhookURL = joinURL(publicURL, WebhookPath(token))
	}
	return c, nil
}

func (c *TelegramChannel) Mode() Mode {
	return c.mode
}

func (c *TelegramChannel) Status() Status {
	c.errMu.Lock()
	lastErr := c.lastErr
	c.errMu.Unlock()

	return Status{
		Mode:              c.mode,
		Running:           c.running.Load(),
		WebhookURL:        c.webhookURL,
		WebhookRegistered: c.registered.Load(),
		LastError:         lastErr,
	}
}

// Start brings up ingestion for the configured mode. Registration failures
// in webhook mode leave the channel serving in a degraded state surfaced by
// Status; they never abort startup.
func (c *TelegramChannel) Start(ctx context.Context) error {
	if c.running.Load() {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.runCancel.set(cancel)

	infoCtx, cancelInfo := context.WithTimeout(runCtx, apiCallTimeout)
	botUser, err := c.bot.GetMe(infoCtx)
	cancelInfo()
	if err != nil {
		logger.WarnCF("telegram", "Failed to get bot info", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	} else {
		logger.InfoCF("telegram", "Telegram bot connected", map[string]interface{}{
			"username":       botUser.Username,
			logger.FieldMode: string(c.mode),
		})
	}

	switch c.mode {
	case ModeWebhook:
		c.running.Store(true)
		c.registerWebhook(runCtx)
	case ModePolling:
		if err := c.startPolling(runCtx); err != nil {
			cancel()
			return err
		}
		c.running.Store(true)
	default:
		cancel()
		return fmt.Errorf("unknown delivery mode %q", c.mode)
	}

	return nil
}

// Stop halts ingestion. In webhook mode the registered push target is
// removed best-effort, single attempt, so the next process instance does
// not race a stale registration.
func (c *TelegramChannel) Stop(ctx context.Context) error {
	if !c.running.Load() {
		return nil
	}
	logger.InfoC("telegram", "Stopping Telegram channel")
	c.running.Store(false)
	c.runCancel.cancelAndClear()

	if c.mode == ModeWebhook {
		delCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()
		if err := c.api.DeleteWebhook(delCtx, &telego.DeleteWebhookParams{}); err != nil {
			logger.WarnCF("telegram", "Webhook deregistration failed on shutdown", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		} else {
			c.registered.Store(false)
			logger.InfoC("telegram", "Webhook deregistered")
		}
	}

	return nil
}

// registerWebhook converges the platform onto exactly one push target:
// clear whatever was registered before, then register the configured URL.
// Running it again after a restart converges to the same single target.
func (c *TelegramChannel) registerWebhook(ctx context.Context) {
	delCtx, cancelDel := context.WithTimeout(ctx, apiCallTimeout)
	err := c.api.DeleteWebhook(delCtx, &telego.DeleteWebhookParams{})
	cancelDel()
	if err != nil {
		// Deleting an absent webhook succeeds on the platform side, so any
		// failure here is transport trouble; registration still decides.
		logger.WarnCF("telegram", "Failed to clear previous webhook", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	setCtx, cancelSet := context.WithTimeout(ctx, apiCallTimeout)
	err = c.api.SetWebhook(setCtx, &telego.SetWebhookParams{URL: c.webhookURL})
	cancelSet()
	if err != nil {
		c.setDeliveryState(false, err)
		logger.ErrorCF("telegram", "Webhook registration failed, serving degraded", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	c.setDeliveryState(true, nil)
	logger.InfoCF("telegram", "Webhook registered", map[string]interface{}{
		"url": c.webhookURL,
	})

	infoCtx, cancelInfo := context.WithTimeout(ctx, apiCallTimeout)
	info, err := c.api.GetWebhookInfo(infoCtx)
	cancelInfo()
	if err == nil {
		logger.InfoCF("telegram", "Webhook status", map[string]interface{}{
			"url":             info.URL,
			"pending_updates": info.PendingUpdateCount,
		})
	}
}

// VerifyDelivery reports delivery problems for the watchdog. It observes
// only; re-registration is deliberately left to a restart.
func (c *TelegramChannel) VerifyDelivery(ctx context.Context) []string {
	if !c.running.Load() {
		return []string{"delivery: channel not running"}
	}
	if c.mode != ModeWebhook {
		return nil
	}

	infoCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	defer cancel()
	info, err := c.api.GetWebhookInfo(infoCtx)
	if err != nil {
		return []string{fmt.Sprintf("delivery: webhook info check failed: %v", err)}
	}
	if info.URL != c.webhookURL {
		c.setDeliveryState(false, fmt.Errorf("registered webhook URL is %q", info.URL))
		return []string{fmt.Sprintf("delivery: webhook drift: platform has %q, expected %q", info.URL, c.webhookURL)}
	}
	c.setDeliveryState(true, nil)
	return nil
}

func (c *TelegramChannel) startPolling(runCtx context.Context) error {
	updates, err := c.bot.UpdatesViaLongPolling(runCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to start updates polling: %w", err)
	}

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.WarnC("telegram", "Updates channel closed unexpectedly, attempting to restart polling...")
					select {
					case <-runCtx.Done():
						return
					case <-time.After(pollingRestartDelay):
					}

					newUpdates, err := c.bot.UpdatesViaLongPolling(runCtx, nil)
					if err != nil {
						logger.ErrorCF("telegram", "Failed to restart updates polling", map[string]interface{}{
							logger.FieldError: err.Error(),
						})
						continue
					}
					updates = newUpdates
					logger.InfoC("telegram", "Updates polling restarted successfully")
					continue
				}
				c.ingest(update)
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) ingest(update telego.Update) {
	ev, ok := Normalize(update)
	if !ok {
		logger.DebugCF("telegram", "Update dropped (no recognizable event)", map[string]interface{}{
			logger.FieldUpdateID: update.UpdateID,
		})
		return
	}
	c.events.Publish(ev)
}

// SendScreen implements the router's send capability.
func (c *TelegramChannel) SendScreen(ctx context.Context, chatID int64, msg menu.Rendered) error {
	params := telegoutil.Message(telegoutil.ID(chatID), msg.Text)
	if len(msg.Buttons) > 0 {
		params = params.WithReplyMarkup(inlineKeyboard(msg.Buttons))
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// AckButtonPress implements the router's ack capability.
func (c *TelegramChannel) AckButtonPress(ctx context.Context, token string) error {
	if err := c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: token,
	}); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

func (c *TelegramChannel) setDeliveryState(registered bool, err error) {
	c.registered.Store(registered)
	c.errMu.Lock()
	if err != nil {
		c.lastErr = err.Error()
	} else {
		c.lastErr = ""
	}
	c.errMu.Unlock()
}

func inlineKeyboard(rows [][]menu.Button) *telego.InlineKeyboardMarkup {
	kbRows := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := telegoutil.InlineKeyboardButton(b.Label)
			if b.IsLaunch() {
				btn = btn.WithWebApp(&telego.WebAppInfo{URL: b.URL})
			} else {
				btn = btn.WithCallbackData(string(b.Target))
			}
			btns = append(btns, btn)
		}
		kbRows = append(kbRows, btns)
	}
	return telegoutil.InlineKeyboard(kbRows...)
}
