package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/guild"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultPollInterval    = 60 * time.Second
	defaultRefreshInterval = 600 * time.Second
	defaultMaxScopes       = 64
)

// PollState is the externally visible state of one guild scope.
type PollState struct {
	GuildID        string    `json:"guild_id"`
	ChannelID      string    `json:"channel_id"`
	League         string    `json:"league"`
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"started_at"`
	LastPollTime   time.Time `json:"last_poll_time,omitempty"`
	LastAnnounced  int       `json:"last_announced"`
	TotalAnnounced int       `json:"total_announced"`
	LastError      string    `json:"last_error,omitempty"`
}

type PollCoordinatorConfig struct {
	Guilds          guild.Repository
	Registry        *RuntimeRegistry
	Announcer       Announcer
	Clock           clock.Clock
	PollInterval    time.Duration
	RefreshInterval time.Duration
	Lookback        time.Duration
	MaxScopes       int
	Logger          *logging.Logger
}

// PollCoordinator owns the explicit map of running guild scopes. Each scope
// runs a poll loop and a token refresh loop on a shared bounded worker pool.
type PollCoordinator struct {
	guilds          guild.Repository
	registry        *RuntimeRegistry
	announcer       Announcer
	clock           clock.Clock
	pollInterval    time.Duration
	refreshInterval time.Duration
	lookback        time.Duration
	logger          *logging.Logger
	pool            *ants.Pool

	mu     sync.Mutex
	scopes map[string]*pollScope
}

type pollScope struct {
	guildID   string
	league    string
	startedAt time.Time
	reserved  bool
	poller    *TransactionPoller
	refresher *TokenRefresher
	cancel    context.CancelFunc
	loops     sync.WaitGroup

	mu             sync.Mutex
	lastAnnounced  int
	totalAnnounced int
	lastErr        string
}

func NewPollCoordinator(cfg PollCoordinatorConfig) (*PollCoordinator, error) {
	if cfg.Guilds == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("%w: guild repository and runtime registry are required", ErrInvalidInput)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = cfg.PollInterval
	}
	if cfg.MaxScopes <= 0 {
		cfg.MaxScopes = defaultMaxScopes
	}

	pool, err := ants.NewPool(
		cfg.MaxScopes*2,
		ants.WithNonblocking(true),
		ants.WithLogger(logger.Named("scope-pool")),
		ants.WithPanicHandler(func(v any) {
			logger.Error("scope loop panicked", "panic", fmt.Sprint(v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scope pool: %w", err)
	}

	return &PollCoordinator{
		guilds:          cfg.Guilds,
		registry:        cfg.Registry,
		announcer:       cfg.Announcer,
		clock:           clk,
		pollInterval:    cfg.PollInterval,
		refreshInterval: cfg.RefreshInterval,
		lookback:        cfg.Lookback,
		logger:          logger,
		pool:            pool,
		scopes:          make(map[string]*pollScope),
	}, nil
}

// Start begins polling for guildID. A non-empty channelID replaces the stored
// announcement channel first. Starting a running scope fails with
// ErrAlreadyRunning and changes nothing.
func (c *PollCoordinator) Start(ctx context.Context, guildID, channelID string) (PollState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollCoordinator.Start")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	channelID = strings.TrimSpace(channelID)
	if guildID == "" {
		return PollState{}, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	c.mu.Lock()
	if _, exists := c.scopes[guildID]; exists {
		c.mu.Unlock()
		return PollState{}, fmt.Errorf("%w: guild=%s", ErrAlreadyRunning, guildID)
	}
	scope := &pollScope{guildID: guildID, reserved: true}
	c.scopes[guildID] = scope
	c.mu.Unlock()

	state, err := c.launch(ctx, scope, channelID)
	if err != nil {
		c.mu.Lock()
		delete(c.scopes, guildID)
		c.mu.Unlock()
		return PollState{}, err
	}
	return state, nil
}

func (c *PollCoordinator) launch(ctx context.Context, scope *pollScope, channelID string) (_ PollState, err error) {
	if channelID != "" {
		previous, moved, moveErr := c.moveChannel(ctx, scope.guildID, channelID)
		if moveErr != nil {
			return PollState{}, moveErr
		}
		if moved {
			defer func() {
				if err != nil {
					c.restoreChannel(ctx, scope.guildID, channelID, previous)
				}
			}()
		}
	}

	runtime, err := c.registry.Resolve(ctx, scope.guildID)
	if err != nil {
		return PollState{}, err
	}
	if strings.TrimSpace(runtime.Guild.ChannelID) == "" {
		return PollState{}, fmt.Errorf("%w: no announcement channel for guild=%s", ErrInvalidInput, scope.guildID)
	}

	source := &scopeGateway{registry: c.registry, guildID: scope.guildID}
	poller := NewTransactionPoller(TransactionPollerConfig{
		GuildID:   scope.guildID,
		ChannelID: runtime.Guild.ChannelID,
		Source:    source,
		Players:   source,
		Announcer: c.announcer,
		Clock:     c.clock,
		Lookback:  c.lookback,
		Logger:    c.logger,
	})
	refresher := NewTokenRefresher(scope.guildID, c.registry, func(rt *LeagueRuntime) {
		if rt.Guild.ChannelID != "" && rt.Guild.ChannelID != poller.ChannelID() {
			c.logger.Info("announcement channel changed", "guild_id", rt.Guild.GuildID, "channel_id", rt.Guild.ChannelID)
			poller.SetChannel(rt.Guild.ChannelID)
		}
	}, c.logger)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	scope.league = runtime.Guild.League().String()
	scope.startedAt = c.clock.Now()
	scope.poller = poller
	scope.refresher = refresher
	scope.cancel = cancel
	scope.reserved = false
	c.mu.Unlock()

	if err := c.submitLoop(loopCtx, scope, "poll", 0, c.pollInterval, c.pollTick(scope)); err != nil {
		cancel()
		return PollState{}, err
	}
	if err := c.submitLoop(loopCtx, scope, "token-refresh", c.refreshInterval, c.refreshInterval, c.refreshTick(scope)); err != nil {
		cancel()
		scope.loops.Wait()
		return PollState{}, err
	}

	c.logger.InfoContext(ctx, "polling started", "guild_id", scope.guildID, "channel_id", runtime.Guild.ChannelID, "league", scope.league)
	return c.snapshot(scope), nil
}

// Stop cancels both loops of a scope and waits for the tick in progress to
// finish, bounded by ctx.
func (c *PollCoordinator) Stop(ctx context.Context, guildID string) error {
	guildID = strings.TrimSpace(guildID)

	c.mu.Lock()
	scope, exists := c.scopes[guildID]
	if !exists || scope.reserved {
		c.mu.Unlock()
		return fmt.Errorf("%w: guild=%s", ErrNotRunning, guildID)
	}
	delete(c.scopes, guildID)
	c.mu.Unlock()

	scope.cancel()
	if err := waitLoops(ctx, scope); err != nil {
		return fmt.Errorf("stop polling guild=%s: %w", guildID, err)
	}
	c.logger.InfoContext(ctx, "polling stopped", "guild_id", guildID)
	return nil
}

func (c *PollCoordinator) Status(guildID string) (PollState, error) {
	guildID = strings.TrimSpace(guildID)

	c.mu.Lock()
	scope, exists := c.scopes[guildID]
	running := exists && !scope.reserved
	c.mu.Unlock()
	if !running {
		return PollState{GuildID: guildID}, fmt.Errorf("%w: guild=%s", ErrNotRunning, guildID)
	}
	return c.snapshot(scope), nil
}

func (c *PollCoordinator) List() []PollState {
	c.mu.Lock()
	scopes := make([]*pollScope, 0, len(c.scopes))
	for _, scope := range c.scopes {
		if !scope.reserved {
			scopes = append(scopes, scope)
		}
	}
	c.mu.Unlock()

	out := make([]PollState, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, c.snapshot(scope))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

// Shutdown stops every scope and releases the worker pool.
func (c *PollCoordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	guildIDs := make([]string, 0, len(c.scopes))
	for id, scope := range c.scopes {
		if !scope.reserved {
			guildIDs = append(guildIDs, id)
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, id := range guildIDs {
		if err := c.Stop(ctx, id); err != nil && !errors.Is(err, ErrNotRunning) {
			errs = append(errs, err)
		}
	}
	c.pool.Release()
	return errors.Join(errs...)
}

// moveChannel stores channelID as the guild's announcement channel and
// returns the channel it replaced.
func (c *PollCoordinator) moveChannel(ctx context.Context, guildID, channelID string) (string, bool, error) {
	cfg, exists, err := c.guilds.GetByGuildID(ctx, guildID)
	if err != nil {
		return "", false, fmt.Errorf("get guild: %w", err)
	}
	if !exists {
		return "", false, fmt.Errorf("%w: guild=%s", ErrNotFound, guildID)
	}
	if cfg.ChannelID == channelID {
		return "", false, nil
	}
	previous := cfg.ChannelID
	cfg.ChannelID = channelID
	cfg.UpdatedAt = c.clock.Now()
	if err := c.guilds.Upsert(ctx, cfg); err != nil {
		return "", false, fmt.Errorf("update guild channel: %w", err)
	}
	return previous, true, nil
}

// restoreChannel undoes moveChannel after a failed start, unless the channel
// was changed again in the meantime.
func (c *PollCoordinator) restoreChannel(ctx context.Context, guildID, override, previous string) {
	ctx = context.WithoutCancel(ctx)
	cfg, exists, err := c.guilds.GetByGuildID(ctx, guildID)
	if err != nil || !exists || cfg.ChannelID != override {
		return
	}
	cfg.ChannelID = previous
	cfg.UpdatedAt = c.clock.Now()
	if err := c.guilds.Upsert(ctx, cfg); err != nil {
		c.logger.WarnContext(ctx, "restore announcement channel failed", "guild_id", guildID, "channel_id", previous, "error", err)
	}
}

func (c *PollCoordinator) submitLoop(ctx context.Context, scope *pollScope, name string, firstDelay, interval time.Duration, tick func(context.Context) error) error {
	scope.loops.Add(1)
	err := c.pool.Submit(func() {
		defer scope.loops.Done()
		c.runLoop(ctx, scope, name, firstDelay, interval, tick)
	})
	if err != nil {
		scope.loops.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			return fmt.Errorf("%w: polling scope limit reached", ErrDependencyUnavailable)
		}
		return fmt.Errorf("submit %s loop: %w", name, err)
	}
	return nil
}

// runLoop is fixed-delay: the next wait starts after the tick returns, so
// ticks of one loop never overlap. Ticks run detached from cancellation.
func (c *PollCoordinator) runLoop(ctx context.Context, scope *pollScope, name string, firstDelay, interval time.Duration, tick func(context.Context) error) {
	logger := c.logger.With("guild_id", scope.guildID, "loop", name)
	delay := firstDelay
	for {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(delay):
			}
		} else if ctx.Err() != nil {
			return
		}
		delay = interval

		if err := c.safeTick(context.WithoutCancel(ctx), tick); err != nil {
			logger.Warn("tick failed", "error", err)
			scope.recordError(err)
		}
	}
}

func (c *PollCoordinator) safeTick(ctx context.Context, tick func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()
	return tick(ctx)
}

func (c *PollCoordinator) pollTick(scope *pollScope) func(context.Context) error {
	return func(ctx context.Context) error {
		n, err := scope.poller.Tick(ctx)
		scope.recordAnnounced(n)
		return err
	}
}

func (c *PollCoordinator) refreshTick(scope *pollScope) func(context.Context) error {
	return func(ctx context.Context) error {
		return scope.refresher.Tick(ctx)
	}
}

func (c *PollCoordinator) snapshot(scope *pollScope) PollState {
	c.mu.Lock()
	state := PollState{
		GuildID:   scope.guildID,
		League:    scope.league,
		Running:   true,
		StartedAt: scope.startedAt,
	}
	poller := scope.poller
	c.mu.Unlock()

	if poller != nil {
		state.ChannelID = poller.ChannelID()
		state.LastPollTime = poller.LastPoll()
	}
	scope.mu.Lock()
	state.LastAnnounced = scope.lastAnnounced
	state.TotalAnnounced = scope.totalAnnounced
	state.LastError = scope.lastErr
	scope.mu.Unlock()
	return state
}

func (s *pollScope) recordAnnounced(n int) {
	s.mu.Lock()
	s.lastAnnounced = n
	s.totalAnnounced += n
	s.mu.Unlock()
}

func (s *pollScope) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func waitLoops(ctx context.Context, scope *pollScope) error {
	done := make(chan struct{})
	go func() {
		scope.loops.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scopeGateway routes poll reads to the guild's current runtime, so a session
// rebuilt by the refresh loop is picked up by the next poll tick.
type scopeGateway struct {
	registry *RuntimeRegistry
	guildID  string
}

func (s *scopeGateway) gateway(ctx context.Context) (*Gateway, error) {
	if runtime, ok := s.registry.Current(s.guildID); ok {
		return runtime.Gateway, nil
	}
	runtime, err := s.registry.Resolve(ctx, s.guildID)
	if err != nil {
		return nil, err
	}
	return runtime.Gateway, nil
}

func (s *scopeGateway) LatestWaiverTransactions(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	g, err := s.gateway(ctx)
	if err != nil {
		return nil, err
	}
	return g.LatestWaiverTransactions(ctx, windowStart)
}

func (s *scopeGateway) LatestTrades(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	g, err := s.gateway(ctx)
	if err != nil {
		return nil, err
	}
	return g.LatestTrades(ctx, windowStart)
}

func (s *scopeGateway) PlayerDetails(ctx context.Context, idOrName string) (fantasy.Player, bool) {
	g, err := s.gateway(ctx)
	if err != nil {
		return fantasy.Player{}, false
	}
	return g.PlayerDetails(ctx, idOrName)
}
