package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
	"github.com/jordan-day/harambot/external/discord"
	"github.com/jordan-day/harambot/external/yahoo"
	"github.com/jordan-day/harambot/internal/config"
	"github.com/jordan-day/harambot/internal/domain/guild"
	cacherepo "github.com/jordan-day/harambot/internal/infrastructure/repository/cache"
	"github.com/jordan-day/harambot/internal/infrastructure/repository/memory"
	"github.com/jordan-day/harambot/internal/infrastructure/repository/postgres"
	"github.com/jordan-day/harambot/internal/interfaces/httpapi"
	"github.com/jordan-day/harambot/internal/platform/cache"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/platform/resilience"
	"github.com/jordan-day/harambot/internal/usecase"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"golang.org/x/oauth2"
)

// App is the assembled bot: the internal HTTP API in front of the polling
// coordinator, plus whatever storage it was configured with.
type App struct {
	Server      *http.Server
	Coordinator *usecase.PollCoordinator

	logger *logging.Logger
	db     *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	guilds, db, err := newGuildRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	store := cache.NewStoreWithOptions(cache.Options{
		TTL:          cfg.CacheTTL,
		Clock:        clk,
		SingleFlight: cfg.CacheSingleFlight,
		MaxEntries:   cfg.CacheMaxEntries,
	})

	yahooClient := yahoo.NewClient(yahoo.ClientConfig{
		BaseURL:    cfg.YahooBaseURL,
		Timeout:    cfg.YahooTimeout,
		MaxRetries: cfg.YahooMaxRetries,
		Logger:     logger.Named("yahoo"),
		Clock:      clk,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.YahooCircuitEnabled,
			FailureThreshold: cfg.YahooCircuitFailureCount,
			OpenTimeout:      cfg.YahooCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.YahooCircuitHalfOpenMaxReq,
		},
	})
	sessions := usecase.NewSessionFactory(usecase.SessionFactoryConfig{
		OAuth:        yahooOAuthConfig(cfg),
		Connector:    yahoo.NewConnector(yahooClient, logger.Named("yahoo")),
		Tokens:       guilds,
		Clock:        clk,
		RefreshGrace: cfg.TokenRefreshGrace,
		Logger:       logger.Named("session"),
	})
	registry := usecase.NewRuntimeRegistry(guilds, sessions, store, cache.DefaultKey, logger.Named("runtime"))

	announcer, err := discord.NewClient(discord.ClientConfig{
		BaseURL:  cfg.DiscordBaseURL,
		BotToken: cfg.DiscordBotToken,
		Timeout:  cfg.DiscordTimeout,
		Clock:    clk,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.DiscordCircuitEnabled,
			FailureThreshold: cfg.DiscordCircuitFailureCount,
			OpenTimeout:      cfg.DiscordCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.DiscordCircuitHalfOpenMaxReq,
		},
	}, logger.Named("discord"))
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	coordinator, err := usecase.NewPollCoordinator(usecase.PollCoordinatorConfig{
		Guilds:          guilds,
		Registry:        registry,
		Announcer:       announcer,
		Clock:           clk,
		PollInterval:    cfg.PollInterval,
		RefreshInterval: cfg.TokenRefreshInterval,
		Lookback:        cfg.PollLookback,
		MaxScopes:       cfg.MaxPollingScopes,
		Logger:          logger.Named("poller"),
	})
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	handler := httpapi.NewHandler(
		usecase.NewLeagueService(registry, clk, logger.Named("league")),
		usecase.NewGuildService(guilds, clk),
		coordinator,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalAPIToken)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Coordinator: coordinator,
		logger:      logger,
		db:          db,
	}, nil
}

// Shutdown stops accepting requests, then stops every polling scope and
// closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.Coordinator.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown poll coordinator: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newGuildRepository(cfg config.Config, logger *logging.Logger) (guild.Repository, *sqlx.DB, error) {
	if cfg.GuildStore != config.GuildStorePostgres {
		logger.Info("guild store ready", "store", config.GuildStoreMemory)
		return memory.NewGuildRepository(nil), nil, nil
	}

	db, err := otelsqlx.Open("postgres",
		NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open guild database: %w", err)
	}
	logger.Info("guild store ready",
		"store", config.GuildStorePostgres,
		"db_name", dbNameFromURL(cfg.DBURL),
		"cache_ttl", cfg.GuildCacheTTL,
	)
	reads := cache.NewStoreWithOptions(cache.Options{TTL: cfg.GuildCacheTTL, SingleFlight: true})
	return cacherepo.NewGuildRepository(postgres.NewGuildRepository(db), reads), db, nil
}

func yahooOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.YahooClientID,
		ClientSecret: cfg.YahooClientSecret,
		RedirectURL:  "oob",
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.YahooAuthURL,
			TokenURL:  cfg.YahooTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("close guild database", "error", err)
	}
}
