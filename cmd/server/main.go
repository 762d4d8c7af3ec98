// Command server runs the survey backend: the REST API, the chatbot, the
// optional close-survey worker and the optional Discord adapter.
//
//	@title						Survey Backend API
//	@version					1.0
//	@description				Surveys answered through a web form or a chatbot conversation, with stats, exports and reports.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/tbourn/go-survey-backend/docs"
	"github.com/tbourn/go-survey-backend/internal/auth"
	"github.com/tbourn/go-survey-backend/internal/chatbot"
	"github.com/tbourn/go-survey-backend/internal/config"
	"github.com/tbourn/go-survey-backend/internal/discord"
	httpapi "github.com/tbourn/go-survey-backend/internal/http"
	"github.com/tbourn/go-survey-backend/internal/jobs"
	"github.com/tbourn/go-survey-backend/internal/observability"
	"github.com/tbourn/go-survey-backend/internal/repo"
	"github.com/tbourn/go-survey-backend/internal/services"
	"github.com/tbourn/go-survey-backend/internal/storage"
	"github.com/tbourn/go-survey-backend/internal/sysutil"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log := sysutil.NewLogger(os.Stdout, cfg.LogPretty, cfg.OTEL.ServiceName)
	zerolog.DefaultContextLogger = &log
	version := sysutil.Version(os.Getenv("APP_VERSION"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, version, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config, version string, log zerolog.Logger) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, observability.DBPlugins(cfg.OTEL)...)
	if err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = auth.RandomSecret(); err != nil {
			return err
		}
		log.Warn().Msg("JWT_SECRET is empty; tokens will not survive a restart")
	}
	tokens := auth.NewJWTManager(secret, cfg.Auth.JWTTTL)

	if cfg.Auth.SeedAccounts {
		seeder := &services.AuthService{DB: db, Tokens: tokens}
		if err := seeder.Seed(ctx, services.DefaultSeedAccounts, log); err != nil {
			return err
		}
	}

	deps := httpapi.Dependencies{DB: db, Tokens: tokens}

	if cfg.Session.Store == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		deps.Sessions = chatbot.NewRedisStore(rdb, cfg.Session.Prefix, cfg.Session.TTL)
	} else {
		deps.Sessions = chatbot.NewMemoryStore(cfg.Session.TTL)
	}
	log.Info().Str("store", cfg.Session.Store).Dur("ttl", cfg.Session.TTL).Msg("chatbot sessions ready")

	if cfg.ExportStorage.Enabled() {
		archive, err := storage.NewMinIOArchive(ctx, cfg.ExportStorage, log)
		if err != nil {
			return err
		}
		deps.Archive = archive
	}

	var worker *asynq.Server
	if cfg.Jobs.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		scheduler := jobs.NewScheduler(redisOpt, log)
		defer scheduler.Close()
		deps.Scheduler = scheduler
		worker = jobs.NewServer(redisOpt, cfg.Jobs.Concurrency, log)
	}

	app := httpapi.NewApp(deps, cfg)

	if worker != nil {
		if err := worker.Start(jobs.NewServeMux(app.Surveys, log)); err != nil {
			return err
		}
		defer worker.Shutdown()
		n, err := app.Surveys.ScheduleOpen(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("schedule open surveys")
		} else {
			log.Info().Int("surveys", n).Msg("close tasks scheduled")
		}
	}

	if cfg.Discord.BotToken != "" {
		bot := discord.New(app.Chatbot, cfg.Discord.CommandPrefix, log)
		if err := bot.Open(cfg.Discord.BotToken); err != nil {
			return err
		}
		defer bot.Close()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, app, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
