package httpapi

import (
	"net/http"
	"time"

	"github.com/jordan-day/harambot/internal/usecase"
)

func (h *Handler) ListGuilds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGuilds")
	defer span.End()

	guilds, err := h.guilds.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list guilds failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]guildDTO, 0, len(guilds))
	for _, g := range guilds {
		items = append(items, guildToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGuild(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGuild")
	defer span.End()

	guildID := guildIDFromPath(r)
	g, err := h.guilds.Get(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "get guild failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, guildToDTO(g))
}

func (h *Handler) RegisterGuild(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterGuild")
	defer span.End()

	guildID := guildIDFromPath(r)
	var req registerGuildRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}
	g, err := h.guilds.Register(ctx, usecase.RegisterGuildInput{
		GuildID:      guildID,
		ChannelID:    req.ChannelID,
		LeagueID:     req.LeagueID,
		LeagueType:   req.LeagueType,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register guild failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "guild registered", "guild_id", g.GuildID, "league", g.League().String())
	writeSuccess(ctx, w, http.StatusOK, guildToDTO(g))
}
