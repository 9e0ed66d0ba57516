package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jordan-day/harambot/internal/domain/guild"
	qb "github.com/jordan-day/harambot/internal/platform/querybuilder"
	"golang.org/x/oauth2"
)

const guildColumns = "id, guild_id, channel_id, league_id, league_type, access_token, refresh_token, token_type, token_expires_at, created_at, updated_at, deleted_at"

type GuildRepository struct {
	db *sqlx.DB
}

func NewGuildRepository(db *sqlx.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) List(ctx context.Context) ([]guild.Guild, error) {
	query, args, err := qb.Select(guildColumns).From("guilds").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select guilds query: %w", err)
	}

	var rows []guildTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select guilds: %w", err)
	}

	out := make([]guild.Guild, 0, len(rows))
	for _, row := range rows {
		out = append(out, guildFromRow(row))
	}
	return out, nil
}

func (r *GuildRepository) GetByGuildID(ctx context.Context, guildID string) (guild.Guild, bool, error) {
	query, args, err := qb.Select(guildColumns).From("guilds").
		Where(
			qb.Eq("guild_id", strings.TrimSpace(guildID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return guild.Guild{}, false, fmt.Errorf("build get guild query: %w", err)
	}

	var row guildTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guild.Guild{}, false, nil
		}
		return guild.Guild{}, false, fmt.Errorf("get guild by id: %w", err)
	}

	return guildFromRow(row), true, nil
}

func (r *GuildRepository) Upsert(ctx context.Context, item guild.Guild) error {
	query, args, err := qb.InsertModel("guilds", guildInsertModelFrom(item), `ON CONFLICT (guild_id) WHERE deleted_at IS NULL
DO UPDATE SET
    channel_id = EXCLUDED.channel_id,
    league_id = EXCLUDED.league_id,
    league_type = EXCLUDED.league_type,
    access_token = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    token_type = EXCLUDED.token_type,
    token_expires_at = EXCLUDED.token_expires_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert guild query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert guild: %w", err)
	}
	return nil
}

// SaveToken writes a refreshed token. An empty refresh token keeps the stored
// one, as the provider may omit it on refresh.
func (r *GuildRepository) SaveToken(ctx context.Context, guildID string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token is required")
	}

	builder := qb.Update("guilds").
		Set("access_token", optionalString(token.AccessToken)).
		Set("token_type", optionalString(token.TokenType)).
		Set("token_expires_at", optionalTime(token.Expiry)).
		SetExpr("updated_at", "NOW()")
	if refresh := strings.TrimSpace(token.RefreshToken); refresh != "" {
		builder = builder.Set("refresh_token", refresh)
	}
	query, args, err := builder.
		Where(
			qb.Eq("guild_id", strings.TrimSpace(guildID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save guild token query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save guild token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("guild not found: %s", guildID)
	}
	return nil
}

func guildFromRow(row guildTableModel) guild.Guild {
	token := &oauth2.Token{
		AccessToken:  strings.TrimSpace(row.AccessToken.String),
		RefreshToken: strings.TrimSpace(row.RefreshToken),
		TokenType:    strings.TrimSpace(row.TokenType.String),
	}
	if row.ExpiresAt != nil {
		token.Expiry = row.ExpiresAt.UTC()
	}
	return guild.Guild{
		GuildID:    row.GuildID,
		ChannelID:  row.ChannelID,
		LeagueID:   row.LeagueID,
		LeagueType: row.LeagueType,
		Token:      token,
		UpdatedAt:  row.UpdatedAt,
	}
}

func guildInsertModelFrom(item guild.Guild) guildInsertModel {
	model := guildInsertModel{
		GuildID:    strings.TrimSpace(item.GuildID),
		ChannelID:  strings.TrimSpace(item.ChannelID),
		LeagueID:   strings.TrimSpace(item.LeagueID),
		LeagueType: strings.ToLower(strings.TrimSpace(item.LeagueType)),
	}
	if item.Token != nil {
		model.AccessToken = optionalString(item.Token.AccessToken)
		model.RefreshToken = strings.TrimSpace(item.Token.RefreshToken)
		model.TokenType = optionalString(item.Token.TokenType)
		model.ExpiresAt = optionalTime(item.Token.Expiry)
	}
	return model
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}
