package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
	"github.com/avdeeva/oporabot/internal/tips"
)

type tipHandler struct {
	deps HandlerDeps
}

// NewTipHandler creates the handler for the /tip command.
//
// The two variants deliberately differ here: the generative bot treats /tip
// as an unconditional escape hatch that bypasses the allow-list and the rate
// limiter, while the static bot enforces the allow-list (answering denied
// users with a fixed restriction message) and charges the tip against the
// sender's rate budget.
func NewTipHandler(deps HandlerDeps) bot.HandlerFunc {
	return tipHandler{deps}.Handle
}

func (h tipHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "tip")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring tip command with nil message or sender", "update_id", update.ID)
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	archiveMessage(ctx, deps, &database.Message{
		ChatID:    chatID,
		UserID:    userID,
		Content:   msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0),
	})

	if deps.Config.AI.Mode == config.ModeStatic {
		if !deps.Policy.Allowed(userID) {
			log.InfoContext(ctx, "Tip command from restricted user", "user_id", userID)
			h.send(ctx, b, chatID, msg.ID, deps.Config.Bot.RestrictedMessage)
			return
		}

		h.send(ctx, b, chatID, msg.ID, tips.Random())
		deps.Limiter.MarkSent(userID)
		return
	}

	h.send(ctx, b, chatID, msg.ID, tips.Random())
}

func (h tipHandler) send(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, text string) {
	log := h.deps.Logger.With("handler", "tip")

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ParseMode:       models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send tip", "error", err, "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Sent tip", "chat_id", chatID, "message_id", sent.ID)

	archiveMessage(ctx, h.deps, &database.Message{
		ChatID:    chatID,
		Content:   text,
		FromBot:   true,
		Timestamp: time.Now().UTC(),
	})
}
