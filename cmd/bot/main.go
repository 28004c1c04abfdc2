package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/ai"
	"github.com/quickremind/quickremind/internal/bot"
	"github.com/quickremind/quickremind/internal/config"
	"github.com/quickremind/quickremind/internal/database"
	"github.com/quickremind/quickremind/internal/engine"
	"github.com/quickremind/quickremind/internal/extstore"
	"github.com/quickremind/quickremind/internal/extstore/googlecal"
	"github.com/quickremind/quickremind/internal/extstore/googletasks"
	"github.com/quickremind/quickremind/internal/notify"
	"github.com/quickremind/quickremind/internal/repository"
	"github.com/quickremind/quickremind/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURI)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Fatalw("failed to run migrations", "error", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURI)
	if err != nil {
		logger.Fatalw("invalid REDIS_URI", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalw("failed to connect to redis", "error", err)
	}

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		logger.Infow("AI quick-add enabled", "model", cfg.AIModel)
	} else {
		logger.Info("AI quick-add not configured, plain-text add disabled")
	}

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatalw("failed to connect to telegram", "error", err)
	}

	calendarSync := extstore.NewSync(
		googlecal.New(cfg.GoogleCredentialsFile, cfg.GoogleCalendarScope, logger),
		extstore.CalendarEventDuration, logger)
	tasksSync := extstore.NewSync(
		googletasks.New(cfg.GoogleCredentialsFile, cfg.GoogleTasksScope, logger),
		extstore.TaskDueOffset, logger)

	scheduler := notify.NewScheduler(notify.NewTelegramNotifier(api, logger), logger)
	defer scheduler.Stop()

	reminderRepo := repository.NewReminderRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	prefs := settings.New(rdb)

	eng := engine.New(reminderRepo, prefs, scheduler, calendarSync, tasksSync, logger)
	if err := eng.Restore(ctx); err != nil {
		logger.Warnw("failed to restore notifications", "error", err)
	}

	b := bot.New(api, eng, reminderRepo, categoryRepo, prefs, aiClient, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting bot")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		logger.Fatalw("bot stopped", "error", err)
	}
}
