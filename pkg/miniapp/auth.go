package miniapp

import (
	"context"
	"strings"

	"wordlygate/pkg/logger"
)

// AuthRequest is the credential set the game client submits before play.
type AuthRequest struct {
	CardNumber     string `json:"card_number"`
	BirthDate      string `json:"birth_date"`
	TelegramUserID string `json:"telegram_user_id"`
}

// AuthUser is the member profile returned to an authorized client.
type AuthUser struct {
	Name       string  `json:"name"`
	Balance    float64 `json:"balance"`
	CardNumber string  `json:"card_number"`
}

// AuthResult is the authentication decision. Reason is set only on
// rejection.
type AuthResult struct {
	Authorized bool
	User       AuthUser
	Reason     string
}

const (
	ReasonMissingFields = "missing_fields"
	ReasonLookupFailed  = "lookup_failed"
)

// MemberDirectory resolves a complete credential set to a member profile.
type MemberDirectory interface {
	Lookup(ctx context.Context, req AuthRequest) (AuthUser, error)
}

// placeholderDirectory authorizes every complete credential set with a
// fixed profile until the real membership backend is connected.
type placeholderDirectory struct{}

func (placeholderDirectory) Lookup(_ context.Context, req AuthRequest) (AuthUser, error) {
	return AuthUser{
		Name:       "Test User",
		Balance:    125.50,
		CardNumber: req.CardNumber,
	}, nil
}

// Authenticate rejects a request missing the card number or birth date
// and otherwise defers to the member directory. The Telegram user id is
// carried for logging only and never validated. Field checks come first
// so the directory never sees an incomplete request.
func (g *Gateway) Authenticate(ctx context.Context, req AuthRequest) AuthResult {
	if strings.TrimSpace(req.CardNumber) == "" ||
		strings.TrimSpace(req.BirthDate) == "" {
		logger.WarnCF("miniapp", "Auth request rejected", map[string]interface{}{
			"reason":           ReasonMissingFields,
			logger.FieldUserID: req.TelegramUserID,
		})
		return AuthResult{Reason: ReasonMissingFields}
	}

	user, err := g.directory.Lookup(ctx, req)
	if err != nil {
		logger.ErrorCF("miniapp", "Member lookup failed", map[string]interface{}{
			logger.FieldError:  err.Error(),
			logger.FieldUserID: req.TelegramUserID,
		})
		return AuthResult{Reason: ReasonLookupFailed}
	}

	logger.InfoCF("miniapp", "Auth request authorized", map[string]interface{}{
		logger.FieldUserID: req.TelegramUserID,
	})
	return AuthResult{Authorized: true, User: user}
}
