package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/league"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/cache"
	"github.com/jordan-day/harambot/internal/platform/logging"
)

const (
	opStandings     = "standings"
	opTeams         = "teams"
	opRoster        = "roster"
	opPlayerDetails = "player_details"
	opPlayerOwner   = "player_owner"
	opMatchups      = "matchups"
	opLatestTrade   = "latest_trade"

	tradeStatusSuccessful = "successful"
)

// HandleSource hands out league handles, refreshing credentials as needed.
type HandleSource interface {
	Ref() league.Ref
	GuildID() string
	EnsureValid(ctx context.Context) (*LeagueHandle, error)
}

// Gateway fronts the upstream league API with the shared cache. Cached reads
// report failures as ok=false and never cache them; the windowed transaction
// queries bypass the cache and return errors.
type Gateway struct {
	session HandleSource
	cache   *cache.Store
	key     cache.KeyFunc
	logger  *logging.Logger
}

func NewGateway(session HandleSource, store *cache.Store, key cache.KeyFunc, logger *logging.Logger) *Gateway {
	if key == nil {
		key = cache.DefaultKey
	}
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(0)
	}
	return &Gateway{
		session: session,
		cache:   store,
		key:     key,
		logger:  logger.With("guild_id", session.GuildID(), "league", session.Ref().String()),
	}
}

func (g *Gateway) Standings(ctx context.Context) ([]fantasy.Standing, bool) {
	return cachedRead(ctx, g, opStandings, nil, func(ctx context.Context, h *LeagueHandle) ([]fantasy.Standing, error) {
		return h.API.Standings(ctx)
	})
}

func (g *Gateway) Teams(ctx context.Context) ([]fantasy.Team, bool) {
	return cachedRead(ctx, g, opTeams, nil, func(ctx context.Context, h *LeagueHandle) ([]fantasy.Team, error) {
		return h.API.Teams(ctx)
	})
}

// Roster returns the current-week roster of the team named teamName.
func (g *Gateway) Roster(ctx context.Context, teamName string) ([]fantasy.RosterPlayer, bool) {
	return cachedRead(ctx, g, opRoster, []any{teamName}, func(ctx context.Context, h *LeagueHandle) ([]fantasy.RosterPlayer, error) {
		teams, err := h.API.Teams(ctx)
		if err != nil {
			return nil, err
		}
		team, ok := findTeamByName(teams, teamName)
		if !ok {
			return nil, fmt.Errorf("%w: team=%q", ErrNotFound, teamName)
		}
		week, err := h.API.CurrentWeek(ctx)
		if err != nil {
			return nil, err
		}
		return h.API.Roster(ctx, team.Key, week)
	})
}

// PlayerDetails returns the first match for idOrName with its ownership text.
func (g *Gateway) PlayerDetails(ctx context.Context, idOrName string) (fantasy.Player, bool) {
	player, ok := cachedRead(ctx, g, opPlayerDetails, []any{idOrName}, func(ctx context.Context, h *LeagueHandle) (fantasy.Player, error) {
		players, err := h.API.PlayerDetails(ctx, strings.TrimSpace(idOrName))
		if err != nil {
			return fantasy.Player{}, err
		}
		if len(players) == 0 {
			return fantasy.Player{}, fmt.Errorf("%w: player=%q", ErrNotFound, idOrName)
		}
		return players[0], nil
	})
	if !ok {
		return fantasy.Player{}, false
	}
	if owner, found := g.PlayerOwner(ctx, player.ID); found {
		player.Owner = owner
	}
	return player, true
}

func (g *Gateway) PlayerOwner(ctx context.Context, playerID string) (string, bool) {
	return cachedRead(ctx, g, opPlayerOwner, []any{playerID}, func(ctx context.Context, h *LeagueHandle) (string, error) {
		id := strings.TrimSpace(playerID)
		owners, err := h.API.Ownership(ctx, []string{id})
		if err != nil {
			return "", err
		}
		ownership, ok := owners[id]
		if !ok {
			return "", fmt.Errorf("%w: ownership player=%s", ErrNotFound, id)
		}
		return ownership.Text(), nil
	})
}

// Matchups renders the current week's scoreboard using the handle's scoring type.
func (g *Gateway) Matchups(ctx context.Context) (fantasy.Scoreboard, bool) {
	return cachedRead(ctx, g, opMatchups, nil, func(ctx context.Context, h *LeagueHandle) (fantasy.Scoreboard, error) {
		week, err := h.API.CurrentWeek(ctx)
		if err != nil {
			return fantasy.Scoreboard{}, err
		}
		matchups, err := h.API.Matchups(ctx, week)
		if err != nil {
			return fantasy.Scoreboard{}, err
		}
		return BuildScoreboard(week, h.ScoringType, matchups), nil
	})
}

// LatestTrade returns the first accepted trade proposal of the team owned by
// the logged in manager. A nil trade with ok=true means none is pending.
func (g *Gateway) LatestTrade(ctx context.Context) (*fantasy.ProposedTrade, bool) {
	return cachedRead(ctx, g, opLatestTrade, []any{g.session.GuildID()}, func(ctx context.Context, h *LeagueHandle) (*fantasy.ProposedTrade, error) {
		teams, err := h.API.Teams(ctx)
		if err != nil {
			return nil, err
		}
		for _, team := range teams {
			if !team.OwnedByCurrentLogin {
				continue
			}
			trades, err := h.API.ProposedTrades(ctx, team.Key)
			if err != nil {
				return nil, err
			}
			for _, trade := range trades {
				if trade.Status == fantasy.TradeStatusAccepted {
					out := trade
					return &out, nil
				}
			}
		}
		return nil, nil
	})
}

// LatestTrades returns successful trades newer than windowStart. Not cached.
func (g *Gateway) LatestTrades(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway.LatestTrades")
	defer span.End()

	raws, err := g.windowed(ctx, windowStart, "trade")
	if err != nil {
		return nil, err
	}
	out := raws[:0]
	for _, raw := range raws {
		if raw.Status() == tradeStatusSuccessful {
			out = append(out, raw)
		}
	}
	return out, nil
}

// LatestWaiverTransactions returns add, drop and add/drop transactions newer
// than windowStart. Not cached.
func (g *Gateway) LatestWaiverTransactions(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway.LatestWaiverTransactions")
	defer span.End()

	return g.windowed(ctx, windowStart, "add", "drop")
}

func (g *Gateway) windowed(ctx context.Context, windowStart time.Time, kinds ...string) ([]transaction.Raw, error) {
	handle, err := g.session.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}
	raws, err := handle.API.Transactions(ctx, kinds...)
	if err != nil {
		return nil, fmt.Errorf("%w: transactions %s: %v", ErrUpstream, strings.Join(kinds, ","), err)
	}

	cutoff := windowStart.Unix()
	out := make([]transaction.Raw, 0, len(raws))
	for _, raw := range raws {
		ts, ok := raw.Timestamp()
		if !ok {
			return nil, fmt.Errorf("%w: transaction id=%s has no timestamp", ErrNormalization, raw.ID())
		}
		if ts > cutoff {
			out = append(out, raw)
		}
	}
	return out, nil
}

func cachedRead[T any](ctx context.Context, g *Gateway, op string, args []any, load func(context.Context, *LeagueHandle) (T, error)) (T, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Gateway."+op)
	defer span.End()

	var zero T
	keyArgs := make([]any, 0, len(args)+1)
	keyArgs = append(keyArgs, g.session.Ref().String())
	keyArgs = append(keyArgs, args...)
	key := g.key(op, keyArgs...)

	value, err := g.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		handle, err := g.session.EnsureValid(ctx)
		if err != nil {
			return nil, err
		}
		return load(ctx, handle)
	})
	if err != nil {
		g.logger.WarnContext(ctx, "league read failed", "op", op, "error", err)
		return zero, false
	}
	out, ok := value.(T)
	if !ok && value != nil {
		g.logger.ErrorContext(ctx, "unexpected cached value type", "op", op, "type", fmt.Sprintf("%T", value))
		return zero, false
	}
	return out, true
}

func findTeamByName(teams []fantasy.Team, name string) (fantasy.Team, bool) {
	name = strings.TrimSpace(name)
	for _, team := range teams {
		if strings.EqualFold(strings.TrimSpace(team.Name), name) {
			return team, true
		}
	}
	return fantasy.Team{}, false
}
