package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jose-valero/shardbot/internal/adapters/discord"
	"github.com/jose-valero/shardbot/internal/adapters/httpops"
	"github.com/jose-valero/shardbot/internal/adapters/weather"
	"github.com/jose-valero/shardbot/internal/app/pagination"
	"github.com/jose-valero/shardbot/internal/app/radio"
	"github.com/jose-valero/shardbot/internal/app/scheduler"
	"github.com/jose-valero/shardbot/internal/app/service"
	"github.com/jose-valero/shardbot/internal/infra/config"
	"github.com/jose-valero/shardbot/internal/infra/i18n"
	"github.com/jose-valero/shardbot/internal/infra/logging"
	"github.com/jose-valero/shardbot/internal/infra/report"
	"github.com/jose-valero/shardbot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// lo setea el build con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "shardbot",
		Short:        "Bot de Discord sharded: menús paginados, polls, reminders y RSS",
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().Int("shard", -1, "shard id (pisa SHARD_ID)")
	root.Flags().Int("shards", 0, "cantidad de shards (pisa SHARD_COUNT)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones y sale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := os.Getenv("DATABASE_URL")
			if url == "" {
				return errors.New("faltante env DATABASE_URL")
			}
			db, err := storage.Open(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer db.Close()
			return storage.Migrate(db)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Run: func(*cobra.Command, []string) {
			fmt.Println("shardbot", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetInt("shard"); v >= 0 {
		cfg.ShardID = v
	}
	if v, _ := cmd.Flags().GetInt("shards"); v > 0 {
		cfg.ShardCount = v
	}
	if cfg.ShardID >= cfg.ShardCount {
		return errors.Newf("shard %d fuera de rango (shards=%d)", cfg.ShardID, cfg.ShardCount)
	}

	log := logging.Shard(logging.New(cfg.LogLevel, cfg.LogPretty), cfg.ShardID)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		return errors.Wrap(err, "migrate")
	}
	log.Info().Msg("✅ DB lista y migrada")

	// Repos
	jobsRepo := storage.NewJobRepo(db)
	callsRepo := storage.NewCallRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)
	feedsRepo := storage.NewFeedRepo(db)
	botRepo := storage.NewBotRepo(db)

	tr, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	// Discord session
	auth := strings.TrimSpace(cfg.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	s, err := discordgo.New(auth)
	if err != nil {
		return errors.Wrap(err, "discord session")
	}
	s.ShardID = cfg.ShardID
	s.ShardCount = cfg.ShardCount
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent
	platform := discord.NewPlatform(s, cfg.ShardID, cfg.ShardCount, log)

	// Fallos: log siempre, Redis y DM al operador si están configurados
	checks := map[string]httpops.Pinger{"postgres": db}
	repOpts := []report.Option{
		report.WithOperator(platform, cfg.OperatorID),
		report.WithSuppress(discord.IsPlatformError),
	}
	if cfg.RedisURL != "" {
		sink, err := report.NewRedisSink(ctx, cfg.RedisURL, report.DefaultChannel)
		if err != nil {
			log.Warn().Err(err).Msg("redis sink deshabilitado")
		} else {
			defer sink.Close()
			repOpts = append(repOpts, report.WithSink(sink))
			checks["redis"] = httpops.PingFunc(sink.Ping)
		}
	}
	rep := report.New(log, cfg.ShardID, repOpts...)

	// Core
	defaults := discord.Defaults{Locale: cfg.DefaultLocale, Prefix: cfg.CommandPrefix}
	menus := pagination.NewEngine(platform, tr, log, pagination.WithDefaultTimeout(cfg.MenuTimeout))
	tracker := radio.NewTracker()

	weatherSvc := service.NewWeatherService(weather.New(cfg.BingMapsKey, cfg.DarkSkyKey), tr)
	jobSvc := service.NewJobService(jobsRepo)
	feedSvc := service.NewFeedService(feedsRepo, platform, log)
	cleanupSvc := service.NewCleanupService(settingsRepo, callsRepo, feedsRepo, menus, tracker, log)

	sched := scheduler.New(scheduler.Deps{
		Jobs:       jobsRepo,
		Calls:      callsRepo,
		Settings:   settingsRepo,
		Shards:     platform,
		Voice:      platform,
		Notifier:   platform,
		Handlers:   discord.NewJobHandlers(platform, settingsRepo, tr, defaults, log),
		Feeds:      feedSvc,
		Tracker:    tracker,
		Translator: tr,
		Faults:     rep,
	}, scheduler.Config{
		Interval:            cfg.TickInterval,
		InactivityThreshold: cfg.InactivityThreshold,
		OwnerShard:          cfg.OwnerShard,
		ReminderShard:       cfg.ReminderShard,
		RSSMinute:           cfg.RSSMinute,
		DefaultLocale:       cfg.DefaultLocale,
		DefaultPrefix:       cfg.CommandPrefix,
	}, log)

	router := discord.NewRouter(discord.Deps{
		Session:    s,
		Platform:   platform,
		Menus:      menus,
		Tracker:    tracker,
		Ready:      sched,
		Cleanup:    cleanupSvc,
		Calls:      callsRepo,
		Jobs:       jobSvc,
		Weather:    weatherSvc,
		Settings:   settingsRepo,
		Bot:        botRepo,
		Faults:     rep,
		Translator: tr,
	}, discord.Options{Defaults: defaults}, log)
	router.Handlers(ctx)

	if err := s.Open(); err != nil {
		return errors.Wrap(err, "discord open")
	}
	defer s.Close()
	log.Info().Int("shards", cfg.ShardCount).Msg("✅ conectado al gateway")

	web := httpops.New(cfg.ShardID, cfg.HTTPAddr, sched.Ready, checks, log)
	rep.Go("httpops", func() {
		if err := web.Start(); err != nil {
			rep.Report(ctx, err)
		}
	})
	rep.Go("scheduler", func() { _ = sched.Run(ctx) })
	rep.Go("janitor", func() { router.Janitor(ctx, 10*time.Minute) })

	<-ctx.Done()
	log.Info().Msg("apagando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := web.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	return nil
}
