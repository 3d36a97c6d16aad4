package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go_content_bot/config"
	"go_content_bot/database"
	"go_content_bot/delivery"
	"go_content_bot/handlers"
	"go_content_bot/membership"
	"go_content_bot/metrics"
	"go_content_bot/pairing"
	"go_content_bot/publish"
	"go_content_bot/quota"
	"go_content_bot/sysutil"
	"go_content_bot/tgclient"
	"go_content_bot/tglog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env нужен только для локального запуска
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {}),
		bot.WithMiddlewares(handlers.Recover),
		bot.WithErrorsHandler(func(err error) {
			log.Warn().Err(err).Msg("telegram polling error")
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("bot init failed")
	}

	// username нужен для deep-link кнопок
	me, err := b.GetMe(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("getMe failed")
	}
	botUsername := me.Username

	tg := tgclient.New(b, cfg.TelegramTimeout)
	tglog.Init(tg, cfg.LogChannelID)
	defer tglog.Flush()

	ledger := quota.NewLedger(db, cfg.PremiumUsers, cfg.Location)
	gate := membership.NewGate(cfg.Required, tg, db)
	orch := delivery.New(gate, ledger, db, tg, delivery.NewPending(), cfg.DailyLimit)

	publisher := publish.New(tg, cfg.TargetChannels, botUsername)
	engine := pairing.NewEngine(cfg.SourceChannelID, pairing.NewTable(), db, publisher)

	h := handlers.New(tg, cfg, db, orch, ledger, engine)

	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.OnMessage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.OnCallback)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.ChannelPost != nil
	}, h.OnChannelPost)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.ChatJoinRequest != nil
	}, h.OnJoinRequest)

	if cfg.MetricsAddr != "" {
		go metrics.Serve(ctx, cfg.MetricsAddr)
	}

	log.Info().
		Str("bot", botUsername).
		Int64("source_channel", cfg.SourceChannelID).
		Int("targets", len(cfg.TargetChannels)).
		Int("required", len(cfg.Required)).
		Int("daily_limit", cfg.DailyLimit).
		Msg("bot started")
	tglog.Send("🤖 Bot @%s started", botUsername)

	b.Start(ctx)

	log.Info().Msg("shutting down")
}
