// Package main is the entry point for the questlog Telegram bot.
//
// The bot turns a personal daily task list into a small RPG: completed
// tasks grant XP and points, missed tasks cost HP at the evening
// settlement, and points buy shop items and weekly rewards.
//
// Layers follow Clean Architecture:
// - Domain: game rules without external dependencies
// - Application: commands, queries, settlement, reminders
// - Infrastructure: Postgres, Redis, Telegram API, scheduler
// - Interface: Telegram routing and handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/questlog/questlog-bot/config"
	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/application/query"
	"github.com/questlog/questlog-bot/internal/application/reminder"
	"github.com/questlog/questlog-bot/internal/application/settlement"
	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/access"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/postgres"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	"github.com/questlog/questlog-bot/internal/infrastructure/scheduler"
	"github.com/questlog/questlog-bot/internal/infrastructure/scheduler/jobs"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/handler"
	"github.com/questlog/questlog-bot/internal/interface/telegram/middleware"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// Cron schedules for the recurring jobs, evaluated in the bot timezone.
const (
	eveningSettlementCron = "0 21 * * *"
	morningNudgeCron      = "0,30 7-12 * * *"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting questlog bot",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", timeutil.BotTZ.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbCfg := postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	}
	dbConn, err := postgres.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	redisCfg := redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = redisClient.Close()
	}()
	log.Info("Redis connection established")

	dialogs := redis.NewDialogStore(redisClient)
	rateCache := redis.NewRateCache(redisClient)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	taskRepo := postgres.NewTaskRepository(dbConn)
	rewardRepo := postgres.NewRewardRepository(dbConn)
	ideaRepo := postgres.NewIdeaRepository(dbConn)
	whitelistRepo := postgres.NewWhitelistRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. TELEGRAM CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	tgConfig := telegram.DefaultClientConfig(cfg.Telegram.Token)
	tgConfig.Logger = log
	tgClient := telegram.NewClient(tgConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	locks := userlock.NewRegistry()
	rewards := user.DefaultRewardTable()

	// Keyed one-shot timers back the task reminders. A fire that arrives
	// later than the grace (restart, long stop-the-world) is dropped.
	oneShots := scheduler.NewOneShotQueue(scheduler.OneShotConfig{
		Logger:       log,
		MisfireGrace: cfg.Scheduler.ReminderGrace,
	})
	oneShots.Start(ctx)
	defer oneShots.Stop()

	reminders := reminder.NewService(oneShots, userRepo, taskRepo, tgClient, log)

	weeklyRate := query.NewWeeklyRateQuery(taskRepo, rateCache, log)

	ensureUser := command.NewEnsureUserHandler(userRepo)
	createTask := command.NewCreateTaskHandler(taskRepo, reminders)
	completeTask := command.NewCompleteTaskHandler(userRepo, taskRepo, rewards, locks, reminders)
	deleteTask := command.NewDeleteTaskHandler(taskRepo, reminders)
	purchaseItem := command.NewPurchaseItemHandler(userRepo, locks)
	createReward := command.NewCreateRewardHandler(rewardRepo)
	claimReward := command.NewClaimRewardHandler(userRepo, rewardRepo, weeklyRate, locks)

	// Reminders for today's pending tasks survive restarts via the ledger.
	restored, err := reminders.RestoreAll(ctx)
	if err != nil {
		log.Warn("failed to restore reminders", "error", err)
	} else {
		log.Info("reminders restored", "count", restored)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. BACKGROUND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: timeutil.BotTZ,
	})

	if cfg.Scheduler.Enabled {
		engine := settlement.NewEngine(userRepo, taskRepo, rewards, locks, tgClient, log)
		settlementJob := jobs.NewEveningSettlementJob(engine, log)
		nudgeJob := jobs.NewMorningNudgeJob(userRepo, taskRepo, tgClient, log)

		if err := sched.Register(settlementJob, scheduler.MustParseCron(eveningSettlementCron), cfg.Scheduler.MisfireGrace); err != nil {
			return fmt.Errorf("failed to register settlement job: %w", err)
		}
		if err := sched.Register(nudgeJob, scheduler.MustParseCron(morningNudgeCron), cfg.Scheduler.MisfireGrace); err != nil {
			return fmt.Errorf("failed to register nudge job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	} else {
		log.Warn("scheduler disabled, settlement and nudges will not run")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. TELEGRAM INTERFACE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Telegram bot...")

	adminID := shared.TelegramID(cfg.Telegram.AdminID)
	checker := access.NewChecker(whitelistRepo, adminID)
	auth := middleware.NewAuthMiddleware(checker, log)

	router := tgiface.NewRouter(log)
	handler.Register(router, handler.Deps{
		UserRepo:   userRepo,
		TaskRepo:   taskRepo,
		RewardRepo: rewardRepo,
		IdeaRepo:   ideaRepo,
		AccessRepo: whitelistRepo,

		EnsureUser:   ensureUser,
		CreateTask:   createTask,
		CompleteTask: completeTask,
		DeleteTask:   deleteTask,
		PurchaseItem: purchaseItem,
		CreateReward: createReward,
		ClaimReward:  claimReward,

		WeeklyRate: weeklyRate,

		Dialogs:   dialogs,
		RateCache: rateCache,
		Logger:    log,
	})

	botConfig := tgiface.DefaultBotConfig()
	botConfig.PollingTimeout = cfg.Telegram.PollingTimeout
	botConfig.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout
	botConfig.Logger = log

	bot, err := tgiface.NewBot(tgiface.BotParams{
		Config:  botConfig,
		Client:  tgClient,
		Router:  router,
		Dialogs: dialogs,
		Auth:    auth,
		IsAdmin: func(id shared.TelegramID) bool { return id == adminID },
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. RUN AND SHUT DOWN
	// ─────────────────────────────────────────────────────────────────────────
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting long polling...")
		errCh <- bot.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
		stop()
		if err := <-errCh; err != nil {
			log.Error("bot stopped with error", "error", err)
			return err
		}
	case err := <-errCh:
		if err != nil {
			log.Error("bot error", "error", err)
			return err
		}
	}

	log.Info("shutdown completed")
	return nil
}

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	if cfg.IsProduction() {
		// JSON in production for log aggregators.
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
