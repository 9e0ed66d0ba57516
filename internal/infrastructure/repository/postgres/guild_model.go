package postgres

import (
	"database/sql"
	"time"
)

type guildTableModel struct {
	ID           int64          `db:"id"`
	GuildID      string         `db:"guild_id"`
	ChannelID    string         `db:"channel_id"`
	LeagueID     string         `db:"league_id"`
	LeagueType   string         `db:"league_type"`
	AccessToken  sql.NullString `db:"access_token"`
	RefreshToken string         `db:"refresh_token"`
	TokenType    sql.NullString `db:"token_type"`
	ExpiresAt    *time.Time     `db:"token_expires_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

type guildInsertModel struct {
	GuildID      string     `db:"guild_id"`
	ChannelID    string     `db:"channel_id"`
	LeagueID     string     `db:"league_id"`
	LeagueType   string     `db:"league_type"`
	AccessToken  *string    `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	TokenType    *string    `db:"token_type"`
	ExpiresAt    *time.Time `db:"token_expires_at"`
}
