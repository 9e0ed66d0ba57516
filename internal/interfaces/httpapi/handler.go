package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/guild"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/usecase"
)

// LeagueQueries serves the read-only league commands.
type LeagueQueries interface {
	Standings(ctx context.Context, guildID string) ([]fantasy.Standing, error)
	Roster(ctx context.Context, guildID, teamName string) ([]fantasy.RosterPlayer, error)
	PlayerDetails(ctx context.Context, guildID, query string) (fantasy.Player, error)
	Matchups(ctx context.Context, guildID string) (fantasy.Scoreboard, error)
	LatestTradeReview(ctx context.Context, guildID string) (fantasy.TradeReview, error)
	Waivers(ctx context.Context, guildID string) ([]transaction.Transaction, error)
}

type GuildRegistry interface {
	Register(ctx context.Context, input usecase.RegisterGuildInput) (guild.Guild, error)
	Get(ctx context.Context, guildID string) (guild.Guild, error)
	List(ctx context.Context) ([]guild.Guild, error)
}

type PollingControl interface {
	Start(ctx context.Context, guildID, channelID string) (usecase.PollState, error)
	Stop(ctx context.Context, guildID string) error
	Status(guildID string) (usecase.PollState, error)
	List() []usecase.PollState
}

type Handler struct {
	leagues   LeagueQueries
	guilds    GuildRegistry
	polling   PollingControl
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(leagues LeagueQueries, guilds GuildRegistry, polling PollingControl, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagues:   leagues,
		guilds:    guilds,
		polling:   polling,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func guildIDFromPath(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("guildID"))
}
