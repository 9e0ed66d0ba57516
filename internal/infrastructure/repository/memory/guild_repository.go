package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jordan-day/harambot/internal/domain/guild"
	"golang.org/x/oauth2"
)

type GuildRepository struct {
	mu     sync.RWMutex
	items  map[string]guild.Guild
	orders []string
}

func NewGuildRepository(guilds []guild.Guild) *GuildRepository {
	items := make(map[string]guild.Guild, len(guilds))
	orders := make([]string, 0, len(guilds))

	for _, g := range guilds {
		if _, exists := items[g.GuildID]; !exists {
			orders = append(orders, g.GuildID)
		}
		items[g.GuildID] = g.Clone()
	}

	return &GuildRepository{
		items:  items,
		orders: orders,
	}
}

func (r *GuildRepository) List(_ context.Context) ([]guild.Guild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]guild.Guild, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id].Clone())
	}

	return out, nil
}

func (r *GuildRepository) GetByGuildID(_ context.Context, guildID string) (guild.Guild, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[strings.TrimSpace(guildID)]
	if !ok {
		return guild.Guild{}, false, nil
	}

	return g.Clone(), true, nil
}

func (r *GuildRepository) Upsert(_ context.Context, item guild.Guild) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.GuildID]; !exists {
		r.orders = append(r.orders, item.GuildID)
	}
	r.items[item.GuildID] = item.Clone()
	return nil
}

func (r *GuildRepository) SaveToken(_ context.Context, guildID string, token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.items[guildID]
	if !ok {
		return fmt.Errorf("guild not found: %s", guildID)
	}
	g.Token = cloneToken(token)
	r.items[guildID] = g
	return nil
}

func cloneToken(token *oauth2.Token) *oauth2.Token {
	if token == nil {
		return nil
	}
	cp := *token
	return &cp
}
