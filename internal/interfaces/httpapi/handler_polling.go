package httpapi

import (
	"net/http"
)

func (h *Handler) ListPolling(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPolling")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.polling.List())
}

func (h *Handler) GetPolling(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPolling")
	defer span.End()

	guildID := guildIDFromPath(r)
	state, err := h.polling.Status(guildID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, state)
}

// StartPolling accepts an optional channel override. An empty body keeps the
// guild's stored channel.
func (h *Handler) StartPolling(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartPolling")
	defer span.End()

	guildID := guildIDFromPath(r)
	var req startPollingRequest
	if r.ContentLength != 0 {
		if err := h.decodeAndValidate(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	state, err := h.polling.Start(ctx, guildID, req.ChannelID)
	if err != nil {
		h.logger.WarnContext(ctx, "start polling failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "polling started", "guild_id", guildID, "channel_id", state.ChannelID)
	writeSuccess(ctx, w, http.StatusAccepted, state)
}

func (h *Handler) StopPolling(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StopPolling")
	defer span.End()

	guildID := guildIDFromPath(r)
	if err := h.polling.Stop(ctx, guildID); err != nil {
		h.logger.WarnContext(ctx, "stop polling failed", "guild_id", guildID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "polling stopped", "guild_id", guildID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"guild_id": guildID, "status": "stopped"})
}
