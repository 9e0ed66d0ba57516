package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/guild"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/usecase"
	"golang.org/x/oauth2"
)

const testInternalToken = "internal-secret"

type fakeLeagues struct {
	standings []fantasy.Standing
	roster    []fantasy.RosterPlayer
	player    fantasy.Player
	review    fantasy.TradeReview
	waivers   []transaction.Transaction
	err       error

	rosterTeam  string
	playerQuery string
}

func (f *fakeLeagues) Standings(context.Context, string) ([]fantasy.Standing, error) {
	return f.standings, f.err
}

func (f *fakeLeagues) Roster(_ context.Context, _ string, teamName string) ([]fantasy.RosterPlayer, error) {
	f.rosterTeam = teamName
	return f.roster, f.err
}

func (f *fakeLeagues) PlayerDetails(_ context.Context, _ string, query string) (fantasy.Player, error) {
	f.playerQuery = query
	return f.player, f.err
}

func (f *fakeLeagues) Matchups(context.Context, string) (fantasy.Scoreboard, error) {
	return fantasy.Scoreboard{Week: 7, Details: []fantasy.MatchupDetail{{Name: "Team A vs Team B", Value: "101.2 - 98.4"}}}, f.err
}

func (f *fakeLeagues) LatestTradeReview(context.Context, string) (fantasy.TradeReview, error) {
	return f.review, f.err
}

func (f *fakeLeagues) Waivers(context.Context, string) ([]transaction.Transaction, error) {
	return f.waivers, f.err
}

type fakeGuilds struct {
	items      map[string]guild.Guild
	registered usecase.RegisterGuildInput
}

func (f *fakeGuilds) Register(_ context.Context, input usecase.RegisterGuildInput) (guild.Guild, error) {
	f.registered = input
	if strings.TrimSpace(input.RefreshToken) == "" {
		return guild.Guild{}, fmt.Errorf("%w: refresh token is required", usecase.ErrInvalidInput)
	}
	g := guild.Guild{
		GuildID:    input.GuildID,
		ChannelID:  input.ChannelID,
		LeagueID:   input.LeagueID,
		LeagueType: strings.ToLower(input.LeagueType),
		Token:      &oauth2.Token{AccessToken: input.AccessToken, RefreshToken: input.RefreshToken},
	}
	f.items[g.GuildID] = g
	return g, nil
}

func (f *fakeGuilds) Get(_ context.Context, guildID string) (guild.Guild, error) {
	g, ok := f.items[guildID]
	if !ok {
		return guild.Guild{}, fmt.Errorf("%w: guild %s", usecase.ErrNotFound, guildID)
	}
	return g, nil
}

func (f *fakeGuilds) List(context.Context) ([]guild.Guild, error) {
	out := make([]guild.Guild, 0, len(f.items))
	for _, g := range f.items {
		out = append(out, g)
	}
	return out, nil
}

type fakePolling struct {
	running map[string]usecase.PollState
}

func (f *fakePolling) Start(_ context.Context, guildID, channelID string) (usecase.PollState, error) {
	if _, ok := f.running[guildID]; ok {
		return usecase.PollState{}, fmt.Errorf("%w: guild %s", usecase.ErrAlreadyRunning, guildID)
	}
	if channelID == "" {
		channelID = "stored-channel"
	}
	state := usecase.PollState{GuildID: guildID, ChannelID: channelID, Running: true, StartedAt: time.Unix(1700000000, 0).UTC()}
	f.running[guildID] = state
	return state, nil
}

func (f *fakePolling) Stop(_ context.Context, guildID string) error {
	if _, ok := f.running[guildID]; !ok {
		return fmt.Errorf("%w: guild %s", usecase.ErrNotRunning, guildID)
	}
	delete(f.running, guildID)
	return nil
}

func (f *fakePolling) Status(guildID string) (usecase.PollState, error) {
	state, ok := f.running[guildID]
	if !ok {
		return usecase.PollState{}, fmt.Errorf("%w: guild %s", usecase.ErrNotRunning, guildID)
	}
	return state, nil
}

func (f *fakePolling) List() []usecase.PollState {
	out := make([]usecase.PollState, 0, len(f.running))
	for _, s := range f.running {
		out = append(out, s)
	}
	return out
}

type routerFixture struct {
	router  http.Handler
	leagues *fakeLeagues
	guilds  *fakeGuilds
	polling *fakePolling
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	f := &routerFixture{
		leagues: &fakeLeagues{},
		guilds:  &fakeGuilds{items: map[string]guild.Guild{}},
		polling: &fakePolling{running: map[string]usecase.PollState{}},
	}
	handler := NewHandler(f.leagues, f.guilds, f.polling, logging.NewNop())
	f.router = NewRouter(handler, logging.NewNop(), true, []string{"*"}, testInternalToken)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
		}
	}
	return rec, envelope
}

func TestRouter_RequiresInternalToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/guilds", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/guilds", nil)
	req.Header.Set("X-Internal-Token", "wrong")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz should be public, got %d", rec.Code)
	}
}

func TestRequireInternalToken_UnconfiguredRejects(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/v1/guilds", nil)
	req.Header.Set("X-Internal-Token", "")
	rec := httptest.NewRecorder()
	RequireInternalToken("", next).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when token is not configured, got %d", rec.Code)
	}
}

func TestRegisterGuild_ValidatesAndHidesCredentials(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec, _ := f.do(t, http.MethodPut, "/v1/guilds/g1", `{"league_id":"12345","league_type":"cricket","refresh_token":"r"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported league type, got %d", rec.Code)
	}

	rec, _ = f.do(t, http.MethodPut, "/v1/guilds/g1", `{"league_id":"12345","league_type":"nfl","refresh_token":"r","surprise":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec, body := f.do(t, http.MethodPut, "/v1/guilds/g1", `{"channel_id":"c1","league_id":"12345","league_type":"NFL","access_token":"a","refresh_token":"r"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if f.guilds.registered.GuildID != "g1" || f.guilds.registered.RefreshToken != "r" {
		t.Fatalf("unexpected register input: %+v", f.guilds.registered)
	}
	data, _ := body["data"].(map[string]any)
	if data["has_credentials"] != true || data["league_type"] != "nfl" {
		t.Fatalf("unexpected guild payload: %v", data)
	}
	if strings.Contains(rec.Body.String(), `"r"`) || strings.Contains(rec.Body.String(), "access_token") {
		t.Fatalf("credentials leaked: %s", rec.Body.String())
	}

	rec, _ = f.do(t, http.MethodGet, "/v1/guilds/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown guild, got %d", rec.Code)
	}
}

func TestLeagueRoutes_RenderResults(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.leagues.standings = []fantasy.Standing{{Rank: 1, Name: "Team C", Wins: 6, Losses: 1}}
	f.leagues.player = fantasy.Player{ID: "33", Name: "Puka Nacua", Owner: "Free Agent"}
	f.leagues.waivers = []transaction.Transaction{{
		ID:        "77",
		Type:      transaction.TypeAdd,
		Timestamp: 1700000000,
		Players:   []transaction.PlayerMovement{{Name: "Puka Nacua", DestinationTeam: "Team A"}},
	}}

	rec, body := f.do(t, http.MethodGet, "/v1/guilds/g1/standings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("standings status: %d", rec.Code)
	}
	items, _ := body["data"].([]any)
	first, _ := items[0].(map[string]any)
	if first["place"] != "1. Team C" || first["record"] != "6-1-0" {
		t.Fatalf("unexpected standing: %v", first)
	}

	rec, _ = f.do(t, http.MethodGet, "/v1/guilds/g1/roster?team=Team%20A", "")
	if rec.Code != http.StatusOK || f.leagues.rosterTeam != "Team A" {
		t.Fatalf("roster status=%d team=%q", rec.Code, f.leagues.rosterTeam)
	}

	rec, _ = f.do(t, http.MethodGet, "/v1/guilds/g1/players", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", rec.Code)
	}
	rec, body = f.do(t, http.MethodGet, "/v1/guilds/g1/players?query=Puka%20Nacua", "")
	if rec.Code != http.StatusOK || f.leagues.playerQuery != "Puka Nacua" {
		t.Fatalf("player status=%d query=%q", rec.Code, f.leagues.playerQuery)
	}
	if data, _ := body["data"].(map[string]any); data["owner"] != "Free Agent" {
		t.Fatalf("unexpected player payload: %v", body["data"])
	}

	rec, body = f.do(t, http.MethodGet, "/v1/guilds/g1/waivers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("waivers status: %d", rec.Code)
	}
	items, _ = body["data"].([]any)
	tx, _ := items[0].(map[string]any)
	if tx["type"] != "add" || tx["owner"] != "Team A" {
		t.Fatalf("unexpected waiver payload: %v", tx)
	}

	rec, body = f.do(t, http.MethodGet, "/v1/guilds/g1/matchups", "")
	if data, _ := body["data"].(map[string]any); rec.Code != http.StatusOK || data["week"] != float64(7) {
		t.Fatalf("unexpected matchups response: %d %v", rec.Code, body)
	}
}

func TestLeagueRoutes_MapErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: no accepted trade", usecase.ErrNotFound), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: refresh rejected", usecase.ErrAuth), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: yahoo status=500", usecase.ErrUpstream), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: breaker open", usecase.ErrDependencyUnavailable), want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		f := newRouterFixture(t)
		f.leagues.err = tc.err
		rec, _ := f.do(t, http.MethodGet, "/v1/guilds/g1/trade", "")
		if rec.Code != tc.want {
			t.Fatalf("err=%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestPollingRoutes_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodPost, "/v1/guilds/g1/polling", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rec.Code, rec.Body.String())
	}
	if data, _ := body["data"].(map[string]any); data["channel_id"] != "stored-channel" || data["running"] != true {
		t.Fatalf("unexpected start payload: %v", body["data"])
	}

	rec, _ = f.do(t, http.MethodPost, "/v1/guilds/g1/polling", `{"channel_id":"c9"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second start, got %d", rec.Code)
	}

	rec, body = f.do(t, http.MethodGet, "/v1/polling", "")
	if items, _ := body["data"].([]any); rec.Code != http.StatusOK || len(items) != 1 {
		t.Fatalf("unexpected polling list: %d %v", rec.Code, body)
	}

	rec, _ = f.do(t, http.MethodDelete, "/v1/guilds/g1/polling", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodDelete, "/v1/guilds/g1/polling", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when stopping an idle guild, got %d", rec.Code)
	}

	rec, body = f.do(t, http.MethodPost, "/v1/guilds/g2/polling", `{"channel_id":"c9"}`)
	if data, _ := body["data"].(map[string]any); rec.Code != http.StatusAccepted || data["channel_id"] != "c9" {
		t.Fatalf("unexpected override start: %d %v", rec.Code, body)
	}
}

func TestRouter_ServesOpenAPIWhenEnabled(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "X-Internal-Token") {
		t.Fatalf("unexpected openapi response: %d", rec.Code)
	}
}
