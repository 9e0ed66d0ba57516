package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const defaultLookback = 60 * time.Second

type TransactionPollerConfig struct {
	GuildID   string
	ChannelID string
	Source    TransactionSource
	Players   PlayerLookup
	Announcer Announcer
	Clock     clock.Clock
	Lookback  time.Duration
	Logger    *logging.Logger
}

// TransactionPoller runs one poll tick at a time for a single scope. It
// announces transactions newer than now-lookback that it has not announced
// before, oldest first.
type TransactionPoller struct {
	guildID   string
	source    TransactionSource
	players   PlayerLookup
	announcer Announcer
	clock     clock.Clock
	lookback  time.Duration
	logger    *logging.Logger

	// tickMu serializes ticks and guards announced.
	tickMu    sync.Mutex
	announced map[string]int64

	// mu guards channelID and lastPoll. It is never held across upstream calls.
	mu        sync.Mutex
	channelID string
	lastPoll  time.Time
}

func NewTransactionPoller(cfg TransactionPollerConfig) *TransactionPoller {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &TransactionPoller{
		guildID:   cfg.GuildID,
		channelID: cfg.ChannelID,
		source:    cfg.Source,
		players:   cfg.Players,
		announcer: cfg.Announcer,
		clock:     clk,
		lookback:  lookback,
		logger:    logger.With("guild_id", cfg.GuildID),
		announced: make(map[string]int64),
	}
}

// SetChannel redirects later announcements. Dedup state is kept.
func (p *TransactionPoller) SetChannel(channelID string) {
	p.mu.Lock()
	p.channelID = channelID
	p.mu.Unlock()
}

func (p *TransactionPoller) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

func (p *TransactionPoller) LastPoll() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPoll
}

// Tick polls once and returns how many transactions were announced. Fetch
// failures are returned after whatever could be fetched has been announced.
func (p *TransactionPoller) Tick(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionPoller.Tick")
	defer span.End()

	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	channelID := p.ChannelID()
	now := p.clock.Now()
	cutoff := now.Add(-p.lookback)
	p.logger.DebugContext(ctx, "polling for transactions", "channel_id", channelID, "cutoff", cutoff)

	raws, fetchErr := p.fetch(ctx, cutoff)
	txs := NormalizeAll(ctx, raws, p.logger)
	fresh := SelectSince(txs, cutoff)
	SortChronologically(fresh)

	announced := 0
	for _, tx := range fresh {
		id := dedupID(tx)
		if id != "" {
			if _, seen := p.announced[id]; seen {
				continue
			}
		}
		if len(tx.Players) == 0 && tx.Type != transaction.TypeTrade {
			p.logger.DebugContext(ctx, "skipping transaction without players", "transaction_id", tx.ID, "type", tx.Type.String())
			continue
		}
		if err := p.announce(ctx, channelID, tx); err != nil {
			p.logger.WarnContext(ctx, "announce transaction failed", "transaction_id", tx.ID, "type", tx.Type.String(), "error", err)
			continue
		}
		if id != "" {
			p.announced[id] = tx.Timestamp
		}
		announced++
	}

	for id, ts := range p.announced {
		if ts <= cutoff.Unix() {
			delete(p.announced, id)
		}
	}
	p.mu.Lock()
	p.lastPoll = now
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "poll tick done", "fetched", len(raws), "normalized", len(txs), "announced", announced)
	return announced, fetchErr
}

// SelectSince keeps transactions strictly newer than cutoff. A transaction
// exactly at the cutoff second is excluded.
func SelectSince(txs []transaction.Transaction, cutoff time.Time) []transaction.Transaction {
	limit := cutoff.Unix()
	out := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Timestamp > limit {
			out = append(out, tx)
		}
	}
	return out
}

func (p *TransactionPoller) fetch(ctx context.Context, cutoff time.Time) ([]transaction.Raw, error) {
	var (
		waivers, trades     []transaction.Raw
		waiverErr, tradeErr error
	)

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		waivers, waiverErr = p.source.LatestWaiverTransactions(ctx, cutoff)
	})
	wg.Go(func() {
		trades, tradeErr = p.source.LatestTrades(ctx, cutoff)
	})
	var errs []error
	if recovered := wg.WaitAndRecover(); recovered != nil {
		errs = append(errs, fmt.Errorf("transaction fetch panicked: %v", recovered.Value))
	}
	if waiverErr != nil {
		errs = append(errs, fmt.Errorf("fetch waiver transactions: %w", waiverErr))
	}
	if tradeErr != nil {
		errs = append(errs, fmt.Errorf("fetch trades: %w", tradeErr))
	}

	out := make([]transaction.Raw, 0, len(waivers)+len(trades))
	out = append(out, waivers...)
	out = append(out, trades...)
	return out, errors.Join(errs...)
}

func (p *TransactionPoller) announce(ctx context.Context, channelID string, tx transaction.Transaction) error {
	if p.announcer == nil {
		return fmt.Errorf("%w: announcer is not configured", ErrDependencyUnavailable)
	}
	announcement := Announcement{
		GuildID:     p.guildID,
		ChannelID:   channelID,
		Transaction: tx,
	}
	if p.players != nil && len(tx.Players) > 0 && tx.Type != transaction.TypeTrade {
		if player, ok := p.players.PlayerDetails(ctx, tx.Players[0].PlayerID); ok {
			announcement.HeadshotURL = player.HeadshotURL
		}
	}
	return p.announcer.Announce(ctx, announcement)
}

func dedupID(tx transaction.Transaction) string {
	if tx.Key != "" {
		return tx.Key
	}
	if tx.ID != "" {
		return tx.Type.String() + ":" + tx.ID
	}
	return ""
}

// RuntimeResolver re-reads a guild's configuration and returns its live runtime.
type RuntimeResolver interface {
	Resolve(ctx context.Context, guildID string) (*LeagueRuntime, error)
}

// TokenRefresher runs the refresh tick of one scope: re-read the guild
// configuration, pick up a rebuilt session, then force a token refresh.
type TokenRefresher struct {
	guildID    string
	resolver   RuntimeResolver
	onResolved func(*LeagueRuntime)
	logger     *logging.Logger
}

func NewTokenRefresher(guildID string, resolver RuntimeResolver, onResolved func(*LeagueRuntime), logger *logging.Logger) *TokenRefresher {
	if logger == nil {
		logger = logging.Default()
	}
	return &TokenRefresher{
		guildID:    guildID,
		resolver:   resolver,
		onResolved: onResolved,
		logger:     logger.With("guild_id", guildID),
	}
}

func (r *TokenRefresher) Tick(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenRefresher.Tick")
	defer span.End()

	runtime, err := r.resolver.Resolve(ctx, r.guildID)
	if err != nil {
		return fmt.Errorf("resolve guild runtime: %w", err)
	}
	if r.onResolved != nil {
		r.onResolved(runtime)
	}
	if err := runtime.Session.Refresh(ctx); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "scheduled token refresh done")
	return nil
}
