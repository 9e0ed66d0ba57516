package cache

import (
	"context"
	"strings"

	"github.com/jordan-day/harambot/internal/domain/guild"
	basecache "github.com/jordan-day/harambot/internal/platform/cache"
	"golang.org/x/oauth2"
)

const (
	guildListKey   = "guild:list"
	guildKeyPrefix = "guild:id:"
)

// GuildRepository memoizes guild reads in front of a slower store. Writes go
// through to next and drop the affected entries.
type GuildRepository struct {
	next  guild.Repository
	cache *basecache.Store
}

func NewGuildRepository(next guild.Repository, cache *basecache.Store) *GuildRepository {
	return &GuildRepository{next: next, cache: cache}
}

func (r *GuildRepository) List(ctx context.Context) ([]guild.Guild, error) {
	v, err := r.cache.GetOrLoad(ctx, guildListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneGuilds(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]guild.Guild)
	return cloneGuilds(items), nil
}

func (r *GuildRepository) GetByGuildID(ctx context.Context, guildID string) (guild.Guild, bool, error) {
	key := guildKeyPrefix + strings.TrimSpace(guildID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByGuildID(ctx, guildID)
		if err != nil {
			return nil, err
		}
		return cachedGuildByID{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return guild.Guild{}, false, err
	}

	cached, _ := v.(cachedGuildByID)
	return cached.value.Clone(), cached.exists, nil
}

func (r *GuildRepository) Upsert(ctx context.Context, item guild.Guild) error {
	defer r.invalidate(ctx, item.GuildID)
	return r.next.Upsert(ctx, item)
}

func (r *GuildRepository) SaveToken(ctx context.Context, guildID string, token *oauth2.Token) error {
	defer r.invalidate(ctx, guildID)
	return r.next.SaveToken(ctx, guildID, token)
}

func (r *GuildRepository) invalidate(ctx context.Context, guildID string) {
	r.cache.Delete(ctx, guildListKey)
	r.cache.Delete(ctx, guildKeyPrefix+strings.TrimSpace(guildID))
}

type cachedGuildByID struct {
	value  guild.Guild
	exists bool
}

func cloneGuilds(items []guild.Guild) []guild.Guild {
	out := make([]guild.Guild, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
