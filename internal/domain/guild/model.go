package guild

import (
	"fmt"
	"strings"
	"time"

	"github.com/jordan-day/harambot/internal/domain/league"
	"golang.org/x/oauth2"
)

// Guild is one chat server registered with a fantasy league.
type Guild struct {
	GuildID    string
	ChannelID  string
	LeagueID   string
	LeagueType string
	Token      *oauth2.Token
	UpdatedAt  time.Time
}

func (g Guild) Validate() error {
	if strings.TrimSpace(g.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}
	if err := g.League().Validate(); err != nil {
		return err
	}
	if g.Token == nil || strings.TrimSpace(g.Token.RefreshToken) == "" {
		return fmt.Errorf("refresh token is required")
	}
	return nil
}

func (g Guild) League() league.Ref {
	return league.Ref{Type: g.LeagueType, ID: g.LeagueID}
}

// Clone returns a copy that shares no token with g.
func (g Guild) Clone() Guild {
	if g.Token != nil {
		token := *g.Token
		g.Token = &token
	}
	return g
}

// SameScope reports whether two configs would drive the same session and channel.
func (g Guild) SameScope(other Guild) bool {
	return g.GuildID == other.GuildID &&
		g.ChannelID == other.ChannelID &&
		g.League() == other.League()
}
