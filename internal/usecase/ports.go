package usecase

import (
	"context"
	"time"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/league"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"golang.org/x/oauth2"
)

// LeagueAPI is a league-scoped upstream handle. Every call may be slow or fail.
type LeagueAPI interface {
	Key() string
	Settings(ctx context.Context) (fantasy.Settings, error)
	CurrentWeek(ctx context.Context) (int, error)
	Standings(ctx context.Context) ([]fantasy.Standing, error)
	Teams(ctx context.Context) ([]fantasy.Team, error)
	Roster(ctx context.Context, teamKey string, week int) ([]fantasy.RosterPlayer, error)
	// PlayerDetails searches by name, or looks up by id when query is numeric.
	PlayerDetails(ctx context.Context, query string) ([]fantasy.Player, error)
	Ownership(ctx context.Context, playerIDs []string) (map[string]fantasy.Ownership, error)
	Matchups(ctx context.Context, week int) ([]fantasy.Matchup, error)
	ProposedTrades(ctx context.Context, teamKey string) ([]fantasy.ProposedTrade, error)
	Transactions(ctx context.Context, kinds ...string) ([]transaction.Raw, error)
}

// LeagueConnector resolves the game for ref and returns a handle bound to token.
type LeagueConnector interface {
	Connect(ctx context.Context, token *oauth2.Token, ref league.Ref) (LeagueAPI, error)
}

// TokenStore persists refreshed credentials.
type TokenStore interface {
	SaveToken(ctx context.Context, guildID string, token *oauth2.Token) error
}

// Announcement is one transaction delivered to a chat channel.
type Announcement struct {
	GuildID     string
	ChannelID   string
	Transaction transaction.Transaction
	HeadshotURL string
}

// Announcer delivers announcements. It is called synchronously, one
// transaction at a time, in dispatch order.
type Announcer interface {
	Announce(ctx context.Context, announcement Announcement) error
}

// TransactionSource serves the windowed, uncached transaction queries.
type TransactionSource interface {
	LatestWaiverTransactions(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error)
	LatestTrades(ctx context.Context, windowStart time.Time) ([]transaction.Raw, error)
}

// PlayerLookup resolves player details, used for announcement thumbnails.
type PlayerLookup interface {
	PlayerDetails(ctx context.Context, idOrName string) (fantasy.Player, bool)
}
