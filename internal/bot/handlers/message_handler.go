package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
)

const (
	sendMessageTimeout = 10 * time.Second
	dbSaveTimeout      = 5 * time.Second
)

type messageHandler struct {
	deps HandlerDeps
}

// NewMessageHandler creates the default handler for free-text group
// messages. It gates each message on the access policy and the per-user
// rate limiter, then replies with generated text.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		log.DebugContext(ctx, "Ignoring update with nil message, nil sender, or empty text", "update_id", update.ID)
		return
	}

	// Commands are routed to their own handlers.
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !deps.Policy.Allowed(userID) {
		log.DebugContext(ctx, "Skipping message: sender not in allow-list", "user_id", userID)
		return
	}

	generative := deps.Config.AI.Mode == config.ModeGemini
	if generative {
		deps.History.Record(userID, msg.Text)
	}

	archiveMessage(ctx, deps, &database.Message{
		ChatID:    chatID,
		UserID:    userID,
		Content:   msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0),
	})

	if !deps.Limiter.CanReply(userID) {
		log.DebugContext(ctx, "Skipping message: rate limited", "user_id", userID)
		return
	}

	var recent []string
	if generative {
		recent = deps.History.Recent(userID)
		_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
	}

	genCtx, cancel := context.WithTimeout(ctx, deps.Config.AI.Timeout)
	text := deps.Generator.Generate(genCtx, recent)
	cancel()

	deps.Limiter.MarkSent(userID)

	h.sendReply(ctx, b, chatID, msg.ID, text)
}

func (h messageHandler) sendReply(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, text string) {
	log := h.deps.Logger.With("handler", "message")

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ParseMode:       models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Sent reply", "chat_id", chatID, "message_id", sent.ID)

	archiveMessage(ctx, h.deps, &database.Message{
		ChatID:    chatID,
		Content:   text,
		FromBot:   true,
		Timestamp: time.Now().UTC(),
	})
}

// archiveMessage saves a message to the archive; failures are logged and do
// not affect the reply pipeline.
func archiveMessage(ctx context.Context, deps HandlerDeps, msg *database.Message) {
	log := deps.Logger.With("component", "archive")

	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()

	if err := deps.Store.SaveMessage(dbCtx, msg); err != nil {
		log.WarnContext(ctx, "Failed to archive message", "error", err, "chat_id", msg.ChatID)
	}
}
