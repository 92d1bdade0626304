package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/purochile/pcbot/internal/adapter/discord"
	httpadapter "github.com/purochile/pcbot/internal/adapter/http"
	"github.com/purochile/pcbot/internal/adapter/persistence"
	"github.com/purochile/pcbot/internal/command"
	"github.com/purochile/pcbot/internal/config"
	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/infra/events"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/store"
	"github.com/purochile/pcbot/internal/usecase"
)

// Version and build information
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var (
		version    = flag.Bool("version", false, "Show version information")
		issueToken = flag.String("issue-token", "", "Print an API token for the given subject and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("pcbot - Puro Chile RP community bot\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "pcbot",
	})

	if err := run(cfg, appLog); err != nil {
		appLog.Error(context.Background(), "bot stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLog logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLog.Info(ctx, "starting pcbot", map[string]interface{}{
		"version":      Version,
		"store_driver": cfg.Store.Driver,
		"prefix":       cfg.Discord.Prefix,
	})

	db, err := initStore(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer db.Close()

	bus := events.NewBus(cfg.Events.BufferSize, appLog)
	useCases := initUseCases(db, bus, cfg, appLog)

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}

	channels := discord.NewChannelManager(session, cfg.Discord.WhitelistCategoryID, cfg.Discord.StaffRoleIDs, appLog)
	bus.Subscribe(domain.EventApplicationApproved, channels.HandleApproved)
	subscribeAudit(bus, appLog)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		bus.Run(ctx)
	}()

	dispatcher := command.NewDispatcher(cfg.Discord.Prefix, discord.NewRoleChecker(session, cfg.Discord.StaffRoleIDs, cfg.Discord.StaffRoleNames), appLog)
	if err := command.RegisterAll(dispatcher, command.Services{
		Whitelist:   useCases.Whitelist,
		Warnings:    useCases.Warnings,
		Ratings:     useCases.Ratings,
		Suggestions: useCases.Suggestions,
		Reactions:   useCases.Reactions,
		Jobs:        useCases.Jobs,
		Latency:     session.HeartbeatLatency,
	}); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	gateway := discord.NewGateway(session, dispatcher, useCases.Reactions, discord.GatewayConfig{
		LogReactions: cfg.Discord.LogReactions,
	}, appLog)
	if err := gateway.Start(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	var server *httpadapter.Server
	if cfg.Server.Enabled {
		var limiter httpadapter.RateLimiter
		if cfg.RateLimitEnabled() {
			redisLimiter, err := persistence.OpenRedisRateLimiter(ctx, cfg.Store.RedisURL, cfg.Server.RateLimit, cfg.Server.RateLimitWindow)
			if err != nil {
				appLog.Error(ctx, "rate limiting disabled", err, nil)
			} else {
				defer redisLimiter.Close()
				limiter = redisLimiter
			}
		}

		server, err = initHTTPServer(cfg, useCases, limiter, appLog)
		if err != nil {
			return err
		}
		go func() {
			if err := server.Start(); err != nil {
				appLog.Error(ctx, "HTTP server failed", err, nil)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	appLog.Info(ctx, "bot started, press Ctrl+C to stop", nil)
	<-sigChan

	appLog.Info(ctx, "shutting down", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.Error(shutdownCtx, "error during HTTP server shutdown", err, nil)
		}
	}
	if err := gateway.Stop(); err != nil {
		appLog.Error(shutdownCtx, "error closing discord gateway", err, nil)
	}

	// Stop the bus last so events from in-flight commands are still delivered.
	cancel()
	wg.Wait()

	appLog.Info(shutdownCtx, "bot stopped", nil)
	return nil
}

// initStore opens the configured backend and wraps it in a store
func initStore(ctx context.Context, cfg *config.Config, appLog logger.Logger) (*store.Store, error) {
	policy, err := store.ParseCorruptPolicy(cfg.Store.OnCorrupt)
	if err != nil {
		return nil, err
	}

	backend, err := persistence.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	appLog.Info(ctx, "record store ready", map[string]interface{}{
		"driver":     cfg.Store.Driver,
		"on_corrupt": string(policy),
	})
	return store.New(backend, store.WithCorruptPolicy(policy), store.WithLogger(appLog)), nil
}

// UseCases holds all use case implementations
type UseCases struct {
	Whitelist   *usecase.WhitelistUseCase
	Warnings    *usecase.WarningUseCase
	Ratings     *usecase.RatingUseCase
	Suggestions *usecase.SuggestionUseCase
	Reactions   *usecase.ReactionLogUseCase
	Jobs        *usecase.JobUseCase
}

// initUseCases initializes all use cases, each over its own collection
func initUseCases(db *store.Store, bus *events.Bus, cfg *config.Config, appLog logger.Logger) UseCases {
	return UseCases{
		Whitelist: usecase.NewWhitelistUseCase(
			store.Open[domain.Application](db, store.CollectionApplications), bus, appLog),
		Warnings: usecase.NewWarningUseCase(
			store.Open[domain.Warning](db, store.CollectionWarnings), bus, appLog),
		Ratings: usecase.NewRatingUseCase(
			store.Open[domain.Rating](db, store.CollectionRatings), usecase.RatingPolicy{Cooldown: cfg.Rating.Cooldown}, appLog),
		Suggestions: usecase.NewSuggestionUseCase(
			store.Open[domain.Suggestion](db, store.CollectionSuggestions), appLog),
		Reactions: usecase.NewReactionLogUseCase(
			store.Open[domain.ReactionLogEntry](db, store.CollectionReactionLogs), appLog),
		Jobs: usecase.NewJobUseCase(
			store.Open[domain.JobApplication](db, store.CollectionJobApplications), cfg.Jobs, bus, appLog),
	}
}

// initHTTPServer builds the keep-alive server, with the read API when a JWT
// secret is configured
func initHTTPServer(cfg *config.Config, useCases UseCases, limiter httpadapter.RateLimiter, appLog logger.Logger) (*httpadapter.Server, error) {
	serverConfig := httpadapter.ServerConfig{
		Addr:           cfg.Address(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Limiter:        limiter,
		TrustedProxies: cfg.Server.TrustedProxies,
	}

	if !cfg.APIEnabled() {
		return httpadapter.NewServer(serverConfig, nil, nil, appLog), nil
	}

	tokens, err := httpadapter.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	api := httpadapter.NewAPIHandler(useCases.Ratings, useCases.Suggestions, appLog)
	return httpadapter.NewServer(serverConfig, api, httpadapter.NewAuthMiddleware(tokens), appLog), nil
}

// subscribeAudit logs moderation events
func subscribeAudit(bus *events.Bus, appLog logger.Logger) {
	audit := appLog.WithFields(map[string]interface{}{"component": "audit"})
	handler := func(ctx context.Context, event domain.Event) error {
		fields := map[string]interface{}{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"subject_id": event.SubjectID,
			"guild_id":   event.GuildID,
		}
		for k, v := range event.Data {
			fields[k] = v
		}
		audit.Info(ctx, "moderation event", fields)
		return nil
	}

	for _, t := range []domain.EventType{
		domain.EventApplicationSubmitted,
		domain.EventApplicationApproved,
		domain.EventApplicationDenied,
		domain.EventApplicationReset,
		domain.EventWarningAdded,
		domain.EventJobDecided,
	} {
		bus.Subscribe(t, handler)
	}
}

// printToken issues a read API token without starting the bot
func printToken(cfg *config.Config, subject string) error {
	tokens, err := httpadapter.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(subject)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
