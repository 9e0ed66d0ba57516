package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jordan-day/harambot/internal/usecase"
)

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	guildID := guildIDFromPath(r)
	standings, err := h.leagues.Standings(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(standings))
	for _, s := range standings {
		items = append(items, standingDTO{
			Rank:   s.Rank,
			Team:   s.Name,
			Place:  s.Place(),
			Record: s.Record(),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	guildID := guildIDFromPath(r)
	teamName := strings.TrimSpace(r.URL.Query().Get("team"))
	roster, err := h.leagues.Roster(ctx, guildID, teamName)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "guild_id", guildID, "team", teamName, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterPlayerDTO, 0, len(roster))
	for _, p := range roster {
		items = append(items, rosterPlayerDTO{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Position: p.SelectedPosition,
			Status:   p.Status,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	guildID := guildIDFromPath(r)
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(ctx, w, fmt.Errorf("%w: query parameter is required", usecase.ErrInvalidInput))
		return
	}

	player, err := h.leagues.PlayerDetails(ctx, guildID, query)
	if err != nil {
		h.logger.WarnContext(ctx, "get player stats failed", "guild_id", guildID, "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playerToDTO(player))
}

func (h *Handler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchups")
	defer span.End()

	guildID := guildIDFromPath(r)
	scoreboard, err := h.leagues.Matchups(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "get matchups failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scoreboardDTO{Week: scoreboard.Week, Matchups: scoreboard.Details})
}

func (h *Handler) GetTradeReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTradeReview")
	defer span.End()

	guildID := guildIDFromPath(r)
	review, err := h.leagues.LatestTradeReview(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "get trade review failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeReviewDTO{
		TradeKey:      review.Trade.Key,
		Summary:       review.Summary(),
		TraderTeam:    review.TraderName,
		TradeeTeam:    review.TradeeName,
		TraderPlayers: playersToDTO(review.TraderDetails),
		TradeePlayers: playersToDTO(review.TradeeDetails),
	})
}

func (h *Handler) GetWaivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWaivers")
	defer span.End()

	guildID := guildIDFromPath(r)
	txs, err := h.leagues.Waivers(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "get waivers failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		items = append(items, transactionToDTO(tx))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
