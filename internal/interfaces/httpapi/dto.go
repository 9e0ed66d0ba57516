package httpapi

import (
	"time"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/guild"
	"github.com/jordan-day/harambot/internal/domain/transaction"
)

type registerGuildRequest struct {
	ChannelID    string     `json:"channel_id" validate:"omitempty,max=64"`
	LeagueID     string     `json:"league_id" validate:"required"`
	LeagueType   string     `json:"league_type" validate:"required,oneof=nfl nba mlb nhl NFL NBA MLB NHL"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token" validate:"required"`
	TokenType    string     `json:"token_type"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

type startPollingRequest struct {
	ChannelID string `json:"channel_id" validate:"omitempty,max=64"`
}

// guildDTO never carries credentials.
type guildDTO struct {
	GuildID        string     `json:"guild_id"`
	ChannelID      string     `json:"channel_id"`
	LeagueID       string     `json:"league_id"`
	LeagueType     string     `json:"league_type"`
	HasCredentials bool       `json:"has_credentials"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type standingDTO struct {
	Rank   int    `json:"rank"`
	Team   string `json:"team"`
	Place  string `json:"place"`
	Record string `json:"record"`
}

type rosterPlayerDTO struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Status   string `json:"status,omitempty"`
}

type playerDTO struct {
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	UniformNumber   string `json:"uniform_number,omitempty"`
	PrimaryPosition string `json:"primary_position,omitempty"`
	Team            string `json:"team,omitempty"`
	ByeWeek         string `json:"bye_week,omitempty"`
	TotalPoints     string `json:"total_points,omitempty"`
	Owner           string `json:"owner"`
	ImageURL        string `json:"image_url,omitempty"`
}

type scoreboardDTO struct {
	Week     int                     `json:"week"`
	Matchups []fantasy.MatchupDetail `json:"matchups"`
}

type tradeReviewDTO struct {
	TradeKey      string      `json:"trade_key"`
	Summary       string      `json:"summary"`
	TraderTeam    string      `json:"trader_team"`
	TradeeTeam    string      `json:"tradee_team"`
	TraderPlayers []playerDTO `json:"trader_players"`
	TradeePlayers []playerDTO `json:"tradee_players"`
}

type movementDTO struct {
	Name            string `json:"name"`
	Team            string `json:"team,omitempty"`
	Position        string `json:"position,omitempty"`
	SourceTeam      string `json:"source_team,omitempty"`
	DestinationTeam string `json:"destination_team,omitempty"`
}

type transactionDTO struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Owner     string        `json:"owner"`
	Timestamp time.Time     `json:"timestamp"`
	Players   []movementDTO `json:"players"`
}

func guildToDTO(g guild.Guild) guildDTO {
	out := guildDTO{
		GuildID:    g.GuildID,
		ChannelID:  g.ChannelID,
		LeagueID:   g.LeagueID,
		LeagueType: g.LeagueType,
		UpdatedAt:  g.UpdatedAt,
	}
	if g.Token != nil {
		out.HasCredentials = g.Token.RefreshToken != ""
		if !g.Token.Expiry.IsZero() {
			expiry := g.Token.Expiry
			out.TokenExpiresAt = &expiry
		}
	}
	return out
}

func playerToDTO(p fantasy.Player) playerDTO {
	return playerDTO{
		PlayerID:        p.ID,
		Name:            p.Name,
		UniformNumber:   p.UniformNumber,
		PrimaryPosition: p.PrimaryPosition,
		Team:            p.TeamAbbr,
		ByeWeek:         p.ByeWeek,
		TotalPoints:     p.TotalPoints,
		Owner:           p.Owner,
		ImageURL:        p.ImageURL,
	}
}

func playersToDTO(players []fantasy.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}
	return out
}

func transactionToDTO(tx transaction.Transaction) transactionDTO {
	players := make([]movementDTO, 0, len(tx.Players))
	for _, p := range tx.Players {
		players = append(players, movementDTO{
			Name:            p.Name,
			Team:            p.TeamAbbr,
			Position:        p.Position,
			SourceTeam:      p.SourceTeam,
			DestinationTeam: p.DestinationTeam,
		})
	}
	return transactionDTO{
		ID:        tx.ID,
		Type:      tx.Type.String(),
		Owner:     tx.Owner(),
		Timestamp: tx.Time(),
		Players:   players,
	}
}
