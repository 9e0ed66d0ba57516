package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerGuildRoutes(mux *http.ServeMux, handler *Handler, internalAPIToken string) {
	mux.Handle("GET /v1/guilds", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.ListGuilds)))
	mux.Handle("GET /v1/guilds/{guildID}", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetGuild)))
	mux.Handle("PUT /v1/guilds/{guildID}", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.RegisterGuild)))
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler, internalAPIToken string) {
	mux.Handle("GET /v1/guilds/{guildID}/standings", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetStandings)))
	mux.Handle("GET /v1/guilds/{guildID}/roster", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetRoster)))
	mux.Handle("GET /v1/guilds/{guildID}/players", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetPlayerStats)))
	mux.Handle("GET /v1/guilds/{guildID}/matchups", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetMatchups)))
	mux.Handle("GET /v1/guilds/{guildID}/trade", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetTradeReview)))
	mux.Handle("GET /v1/guilds/{guildID}/waivers", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetWaivers)))
}

func registerPollingRoutes(mux *http.ServeMux, handler *Handler, internalAPIToken string) {
	mux.Handle("GET /v1/polling", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.ListPolling)))
	mux.Handle("GET /v1/guilds/{guildID}/polling", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.GetPolling)))
	mux.Handle("POST /v1/guilds/{guildID}/polling", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.StartPolling)))
	mux.Handle("DELETE /v1/guilds/{guildID}/polling", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.StopPolling)))
}
