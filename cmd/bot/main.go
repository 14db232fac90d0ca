// Package main contains the entrypoint for the support-group bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/avdeeva/oporabot/internal/access"
	"github.com/avdeeva/oporabot/internal/bot"
	"github.com/avdeeva/oporabot/internal/bot/handlers"
	"github.com/avdeeva/oporabot/internal/bot/tasks"
	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
	"github.com/avdeeva/oporabot/internal/history"
	"github.com/avdeeva/oporabot/internal/logger"
	"github.com/avdeeva/oporabot/internal/ratelimit"
	"github.com/avdeeva/oporabot/internal/reply"
	"github.com/avdeeva/oporabot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the bot, and returns an exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = store.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Error("Database health check failed", "error", err)
		return 1
	}

	var generator reply.Generator
	switch cfg.AI.Mode {
	case config.ModeGemini:
		generator, err = reply.NewGemini(ctx, cfg.AI, log)
		if err != nil {
			log.Error("Failed to initialize Gemini generator", "error", err)
			return 1
		}
	case config.ModeStatic:
		generator = reply.NewStatic()
	}

	// An empty allow-list means "everyone" only for the generative bot.
	allowList := config.ParseAllowList(cfg.Bot.AllowedUserIDs)
	policy := access.NewPolicy(allowList, cfg.AI.Mode == config.ModeGemini)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Generator: generator,
		Policy:    policy,
		Limiter:   ratelimit.NewLimiter(cfg.Bot.MinReplyInterval),
		History:   history.NewBuffer(),
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...", "mode", cfg.AI.Mode, "allow_list_size", len(allowList),
		"min_reply_interval", cfg.Bot.MinReplyInterval)
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
