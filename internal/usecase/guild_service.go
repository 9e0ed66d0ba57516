package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/guild"
	"golang.org/x/oauth2"
)

type RegisterGuildInput struct {
	GuildID      string
	ChannelID    string
	LeagueID     string
	LeagueType   string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

type GuildService struct {
	repo  guild.Repository
	clock clock.Clock
}

func NewGuildService(repo guild.Repository, clk clock.Clock) *GuildService {
	if clk == nil {
		clk = clock.New()
	}
	return &GuildService{repo: repo, clock: clk}
}

// Register stores or replaces the league binding and credentials of a guild.
// A running scope picks the change up on its next refresh tick.
func (s *GuildService) Register(ctx context.Context, input RegisterGuildInput) (guild.Guild, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GuildService.Register")
	defer span.End()

	item := guild.Guild{
		GuildID:    strings.TrimSpace(input.GuildID),
		ChannelID:  strings.TrimSpace(input.ChannelID),
		LeagueID:   strings.TrimSpace(input.LeagueID),
		LeagueType: strings.ToLower(strings.TrimSpace(input.LeagueType)),
		Token: &oauth2.Token{
			AccessToken:  strings.TrimSpace(input.AccessToken),
			RefreshToken: strings.TrimSpace(input.RefreshToken),
			TokenType:    strings.TrimSpace(input.TokenType),
			Expiry:       input.ExpiresAt,
		},
		UpdatedAt: s.clock.Now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return guild.Guild{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return guild.Guild{}, fmt.Errorf("upsert guild: %w", err)
	}
	return item, nil
}

func (s *GuildService) Get(ctx context.Context, guildID string) (guild.Guild, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return guild.Guild{}, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}
	item, exists, err := s.repo.GetByGuildID(ctx, guildID)
	if err != nil {
		return guild.Guild{}, fmt.Errorf("get guild: %w", err)
	}
	if !exists {
		return guild.Guild{}, fmt.Errorf("%w: guild=%s", ErrNotFound, guildID)
	}
	return item, nil
}

func (s *GuildService) List(ctx context.Context) ([]guild.Guild, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	return items, nil
}
