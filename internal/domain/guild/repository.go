package guild

import (
	"context"

	"golang.org/x/oauth2"
)

// Repository describes guild configuration and token persistence.
type Repository interface {
	List(ctx context.Context) ([]Guild, error)
	GetByGuildID(ctx context.Context, guildID string) (Guild, bool, error)
	Upsert(ctx context.Context, guild Guild) error
	SaveToken(ctx context.Context, guildID string, token *oauth2.Token) error
}
