package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jordan-day/harambot/internal/domain/guild"
	"github.com/jordan-day/harambot/internal/platform/cache"
	"github.com/jordan-day/harambot/internal/platform/logging"
)

// LeagueRuntime is the live session and gateway of one guild.
type LeagueRuntime struct {
	Guild   guild.Guild
	Session *Session
	Gateway *Gateway
}

// RuntimeRegistry keeps one LeagueRuntime per guild. Every Resolve re-reads the
// guild configuration. A changed league or a replaced refresh token rebuilds the
// session; a changed channel only swaps the runtime value.
type RuntimeRegistry struct {
	guilds   guild.Repository
	sessions *SessionFactory
	cache    *cache.Store
	key      cache.KeyFunc
	logger   *logging.Logger

	mu       sync.Mutex
	runtimes map[string]*LeagueRuntime
}

func NewRuntimeRegistry(guilds guild.Repository, sessions *SessionFactory, store *cache.Store, key cache.KeyFunc, logger *logging.Logger) *RuntimeRegistry {
	if logger == nil {
		logger = logging.Default()
	}
	return &RuntimeRegistry{
		guilds:   guilds,
		sessions: sessions,
		cache:    store,
		key:      key,
		logger:   logger,
		runtimes: make(map[string]*LeagueRuntime),
	}
}

func (r *RuntimeRegistry) Resolve(ctx context.Context, guildID string) (*LeagueRuntime, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	cfg, exists, err := r.guilds.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("get guild: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: guild=%s", ErrNotFound, guildID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.runtimes[guildID]; ok && current.Guild.League() == cfg.League() && !tokenReplaced(current, cfg) {
		if current.Guild.ChannelID == cfg.ChannelID {
			return current, nil
		}
		moved := &LeagueRuntime{Guild: cfg, Session: current.Session, Gateway: current.Gateway}
		r.runtimes[guildID] = moved
		return moved, nil
	}

	session := r.sessions.New(cfg.GuildID, cfg.League(), cfg.Token)
	runtime := &LeagueRuntime{
		Guild:   cfg,
		Session: session,
		Gateway: NewGateway(session, r.cache, r.key, r.logger),
	}
	if _, existed := r.runtimes[guildID]; existed {
		r.logger.InfoContext(ctx, "guild config changed, rebuilt league session", "guild_id", guildID, "league", cfg.League().String())
	}
	r.runtimes[guildID] = runtime
	return runtime, nil
}

// Current returns the last resolved runtime without touching the repository.
func (r *RuntimeRegistry) Current(guildID string) (*LeagueRuntime, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runtime, ok := r.runtimes[guildID]
	return runtime, ok
}

func (r *RuntimeRegistry) Forget(guildID string) {
	r.mu.Lock()
	delete(r.runtimes, guildID)
	r.mu.Unlock()
}

func tokenReplaced(current *LeagueRuntime, cfg guild.Guild) bool {
	if cfg.Token == nil {
		return false
	}
	return cfg.Token.RefreshToken != "" && cfg.Token.RefreshToken != current.Session.RefreshToken()
}
