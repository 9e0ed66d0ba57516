package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
)

const waiverReportWindow = 24 * time.Hour

// RuntimeSource resolves a guild to its live league runtime.
type RuntimeSource interface {
	Resolve(ctx context.Context, guildID string) (*LeagueRuntime, error)
}

// LeagueService answers the chat commands of one guild through its gateway.
type LeagueService struct {
	runtimes RuntimeSource
	clock    clock.Clock
	logger   *logging.Logger
}

func NewLeagueService(runtimes RuntimeSource, clk clock.Clock, logger *logging.Logger) *LeagueService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		runtimes: runtimes,
		clock:    clk,
		logger:   logger,
	}
}

func (s *LeagueService) Standings(ctx context.Context, guildID string) ([]fantasy.Standing, error) {
	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return nil, err
	}
	standings, ok := gateway.Standings(ctx)
	if !ok {
		return nil, unavailable("standings")
	}
	return standings, nil
}

func (s *LeagueService) Roster(ctx context.Context, guildID, teamName string) ([]fantasy.RosterPlayer, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return nil, err
	}
	roster, ok := gateway.Roster(ctx, teamName)
	if !ok {
		return nil, unavailable("roster")
	}
	return roster, nil
}

func (s *LeagueService) PlayerDetails(ctx context.Context, guildID, query string) (fantasy.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return fantasy.Player{}, fmt.Errorf("%w: player name or id is required", ErrInvalidInput)
	}
	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return fantasy.Player{}, err
	}
	player, ok := gateway.PlayerDetails(ctx, query)
	if !ok {
		return fantasy.Player{}, fmt.Errorf("%w: player=%q", ErrNotFound, query)
	}
	return player, nil
}

func (s *LeagueService) Matchups(ctx context.Context, guildID string) (fantasy.Scoreboard, error) {
	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return fantasy.Scoreboard{}, err
	}
	scoreboard, ok := gateway.Matchups(ctx)
	if !ok {
		return fantasy.Scoreboard{}, unavailable("matchups")
	}
	return scoreboard, nil
}

// LatestTradeReview returns the accepted trade awaiting league approval with
// details for every player involved, or ErrNotFound when there is none.
func (s *LeagueService) LatestTradeReview(ctx context.Context, guildID string) (fantasy.TradeReview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.LatestTradeReview")
	defer span.End()

	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return fantasy.TradeReview{}, err
	}
	trade, ok := gateway.LatestTrade(ctx)
	if !ok {
		return fantasy.TradeReview{}, unavailable("latest trade")
	}
	if trade == nil {
		return fantasy.TradeReview{}, fmt.Errorf("%w: no accepted trade pending", ErrNotFound)
	}

	teams, ok := gateway.Teams(ctx)
	if !ok {
		return fantasy.TradeReview{}, unavailable("teams")
	}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		names[team.Key] = team.Name
	}

	review := fantasy.TradeReview{
		Trade:      *trade,
		TraderName: names[trade.TraderTeamKey],
		TradeeName: names[trade.TradeeTeamKey],
	}
	review.TraderDetails = s.tradeDetails(ctx, gateway, trade.TraderPlayers)
	review.TradeeDetails = s.tradeDetails(ctx, gateway, trade.TradeePlayers)
	return review, nil
}

// Waivers returns the add and drop activity of the last 24 hours, oldest first.
func (s *LeagueService) Waivers(ctx context.Context, guildID string) ([]transaction.Transaction, error) {
	gateway, err := s.gateway(ctx, guildID)
	if err != nil {
		return nil, err
	}
	raws, err := gateway.LatestWaiverTransactions(ctx, s.clock.Now().Add(-waiverReportWindow))
	if err != nil {
		return nil, err
	}
	txs := NormalizeAll(ctx, raws, s.logger)
	SortChronologically(txs)
	return txs, nil
}

func (s *LeagueService) tradeDetails(ctx context.Context, gateway *Gateway, players []fantasy.TradePlayer) []fantasy.Player {
	out := make([]fantasy.Player, 0, len(players))
	for _, p := range players {
		query := p.ID
		if query == "" {
			query = p.Name
		}
		player, ok := gateway.PlayerDetails(ctx, query)
		if !ok {
			s.logger.WarnContext(ctx, "trade player details unavailable", "player_id", p.ID, "player_name", p.Name)
			player = fantasy.Player{Key: p.Key, ID: p.ID, Name: p.Name}
		}
		out = append(out, player)
	}
	return out
}

func (s *LeagueService) gateway(ctx context.Context, guildID string) (*Gateway, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}
	runtime, err := s.runtimes.Resolve(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return runtime.Gateway, nil
}

func unavailable(what string) error {
	return fmt.Errorf("%w: %s unavailable", ErrDependencyUnavailable, what)
}
