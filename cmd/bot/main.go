package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/auth"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/config"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/engine"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/gallery"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/metadata"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/repository"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/service"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/telegram"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("loading configuration")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// User persistence is optional; the bot runs without it.
	var users domain.UserStore
	if cfg.UserStoreEnabled() {
		db, err := sql.Open("postgres", cfg.GetDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

		userRepo := repository.NewPostgresUserRepository(db)
		if err := userRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
		users = userRepo
		if n, err := userRepo.CountUsers(ctx); err == nil {
			log.Info().Int("known_users", n).Msg("database connection established")
		} else {
			log.Info().Msg("database connection established")
		}
	} else {
		log.Warn().Msg("DB_HOST not set, user persistence disabled")
	}

	gate := auth.NewGate(cfg.AllowedUsers, cfg.AllowedAdmins)
	generator := service.NewArtifactGenerator(cfg, log)
	recorder := metadata.NewRecorder(log)
	renderer := gallery.NewRenderer(cfg.OutputDir, cfg.GalleryOutput, log)

	bot, err := telegram.NewBot(cfg.TelegramBotToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start Telegram bot")
	}

	eng := engine.New(gate, generator, recorder, bot, users, renderer, log)
	bot.SetEngine(eng)
	log.Info().Str("bot", bot.Username()).Msg("Telegram bot authorized")

	// Rebuild the gallery on schedule.
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.GallerySchedule, func() {
		if err := renderer.Render(); err != nil {
			log.Error().Err(err).Msg("scheduled gallery rebuild failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule gallery rebuild")
	}
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("initiating shutdown")
		cancel()
	}()

	log.Info().Msg("starting update loop")
	bot.Run(ctx)

	c.Stop()
	log.Info().Msg("shut down gracefully")
}
