package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/league"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/usecase"
	"golang.org/x/oauth2"
)

// Connector resolves a league reference to a token-bound League.
type Connector struct {
	client *Client
	logger *logging.Logger
}

func NewConnector(client *Client, logger *logging.Logger) *Connector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Connector{client: client, logger: logger}
}

// Connect looks up the current game for the league's sport and binds the
// league key "{game_key}.l.{league_id}" to token.
func (c *Connector) Connect(ctx context.Context, token *oauth2.Token, ref league.Ref) (usecase.LeagueAPI, error) {
	ref = ref.Normalized()
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	content, err := c.client.getContent(ctx, token, "/game/"+url.PathEscape(ref.Type))
	if err != nil {
		return nil, fmt.Errorf("fetch game %s: %w", ref.Type, err)
	}
	items, err := resource(content, "game")
	if err != nil {
		return nil, err
	}
	gameKey := firstNonEmpty(getString(flatten(items[0]), "game_key"), getString(flatten(items[0]), "game_id"))
	if gameKey == "" {
		return nil, fmt.Errorf("yahoo game %s has no game key", ref.Type)
	}

	var owned oauth2.Token
	if token != nil {
		owned = *token
	}
	return &League{
		client:  c.client,
		token:   &owned,
		gameKey: gameKey,
		key:     ref.Key(gameKey),
	}, nil
}

// League is one Yahoo league read with one set of credentials.
type League struct {
	client  *Client
	token   *oauth2.Token
	gameKey string
	key     string
}

func (l *League) Key() string {
	return l.key
}

func (l *League) Settings(ctx context.Context) (fantasy.Settings, error) {
	items, err := l.leagueResource(ctx, "/metadata")
	if err != nil {
		return fantasy.Settings{}, err
	}
	meta := flatten(items[0])
	return fantasy.Settings{
		Name:        getString(meta, "name"),
		ScoringType: getString(meta, "scoring_type"),
		CurrentWeek: int(getInt64(meta, "current_week")),
	}, nil
}

func (l *League) CurrentWeek(ctx context.Context) (int, error) {
	settings, err := l.Settings(ctx)
	if err != nil {
		return 0, err
	}
	if settings.CurrentWeek <= 0 {
		return 0, fmt.Errorf("league %s has no current week", l.key)
	}
	return settings.CurrentWeek, nil
}

func (l *League) Standings(ctx context.Context) ([]fantasy.Standing, error) {
	items, err := l.leagueResource(ctx, "/standings")
	if err != nil {
		return nil, err
	}
	standings, ok := subResource(items, "standings")
	if !ok {
		return nil, fmt.Errorf("league %s standings missing", l.key)
	}
	return parseStandings(flatten(standings)["teams"]), nil
}

func (l *League) Teams(ctx context.Context) ([]fantasy.Team, error) {
	items, err := l.leagueResource(ctx, "/teams")
	if err != nil {
		return nil, err
	}
	teams, ok := subResource(items, "teams")
	if !ok {
		return nil, fmt.Errorf("league %s teams missing", l.key)
	}
	return parseTeams(teams), nil
}

func (l *League) Roster(ctx context.Context, teamKey string, week int) ([]fantasy.RosterPlayer, error) {
	path := fmt.Sprintf("/team/%s/roster;week=%d", url.PathEscape(teamKey), week)
	content, err := l.client.getContent(ctx, l.token, path)
	if err != nil {
		return nil, fmt.Errorf("fetch roster team=%s: %w", teamKey, err)
	}
	items, err := resource(content, "team")
	if err != nil {
		return nil, err
	}
	roster, ok := subResource(items, "roster")
	if !ok {
		return nil, fmt.Errorf("team %s roster missing", teamKey)
	}
	return parseRoster(getMap(flatten(roster), "0")["players"]), nil
}

func (l *League) PlayerDetails(ctx context.Context, query string) ([]fantasy.Player, error) {
	query = strings.TrimSpace(query)
	var selector string
	if _, err := strconv.Atoi(query); err == nil {
		selector = ";player_keys=" + l.playerKey(query)
	} else {
		selector = ";search=" + url.PathEscape(query)
	}
	items, err := l.leagueResource(ctx, "/players"+selector+"/stats")
	if err != nil {
		return nil, err
	}
	players, _ := subResource(items, "players")
	return parsePlayers(players), nil
}

func (l *League) Ownership(ctx context.Context, playerIDs []string) (map[string]fantasy.Ownership, error) {
	keys := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id = strings.TrimSpace(id); id != "" {
			keys = append(keys, l.playerKey(id))
		}
	}
	if len(keys) == 0 {
		return map[string]fantasy.Ownership{}, nil
	}
	items, err := l.leagueResource(ctx, "/players;player_keys="+strings.Join(keys, ",")+"/ownership")
	if err != nil {
		return nil, err
	}
	players, _ := subResource(items, "players")
	return parseOwnership(players), nil
}

func (l *League) Matchups(ctx context.Context, week int) ([]fantasy.Matchup, error) {
	items, err := l.leagueResource(ctx, fmt.Sprintf("/scoreboard;week=%d", week))
	if err != nil {
		return nil, err
	}
	scoreboard, ok := subResource(items, "scoreboard")
	if !ok {
		return nil, fmt.Errorf("league %s scoreboard missing", l.key)
	}
	return parseMatchups(flatten(scoreboard), week), nil
}

func (l *League) ProposedTrades(ctx context.Context, teamKey string) ([]fantasy.ProposedTrade, error) {
	path := fmt.Sprintf("/team/%s/transactions;types=pending_trade", url.PathEscape(teamKey))
	content, err := l.client.getContent(ctx, l.token, path)
	if err != nil {
		return nil, fmt.Errorf("fetch proposed trades team=%s: %w", teamKey, err)
	}
	items, err := resource(content, "team")
	if err != nil {
		return nil, err
	}
	transactions, _ := subResource(items, "transactions")
	return parseProposedTrades(transactions), nil
}

func (l *League) Transactions(ctx context.Context, kinds ...string) ([]transaction.Raw, error) {
	path := "/transactions"
	if len(kinds) > 0 {
		path += ";types=" + strings.Join(kinds, ",")
	}
	items, err := l.leagueResource(ctx, path)
	if err != nil {
		return nil, err
	}
	transactions, _ := subResource(items, "transactions")
	return parseTransactions(transactions), nil
}

func (l *League) leagueResource(ctx context.Context, suffix string) ([]any, error) {
	content, err := l.client.getContent(ctx, l.token, "/league/"+l.key+suffix)
	if err != nil {
		return nil, fmt.Errorf("fetch league %s%s: %w", l.key, suffix, err)
	}
	return resource(content, "league")
}

func (l *League) playerKey(id string) string {
	return l.gameKey + ".p." + strings.TrimSpace(id)
}
