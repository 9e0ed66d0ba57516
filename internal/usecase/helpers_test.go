package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jordan-day/harambot/internal/domain/league"
	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"golang.org/x/oauth2"
)

var testLogger = logging.NewNop()

type stubConnector struct {
	api LeagueAPI
	err error

	mu     sync.Mutex
	tokens []string
}

func (c *stubConnector) Connect(_ context.Context, token *oauth2.Token, _ league.Ref) (LeagueAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = append(c.tokens, token.AccessToken)
	if c.err != nil {
		return nil, c.err
	}
	return c.api, nil
}

func (c *stubConnector) connectedWith() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tokens...)
}

type tokenServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newTokenServer answers refresh_token grants with access-1, access-2, ...
// When fail is set every grant is rejected.
func newTokenServer(t *testing.T, fail bool) *tokenServer {
	t.Helper()

	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.hits.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if fail || r.Form.Get("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"access_token":"access-%d","refresh_token":"refresh-%d","token_type":"bearer","expires_in":3600}`, n, n)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			TokenURL:  ts.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func mustRaw(t *testing.T, payload string) transaction.Raw {
	t.Helper()

	var raw transaction.Raw
	if err := sonic.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("decode raw transaction: %v", err)
	}
	return raw
}

func playerJSON(id, name, abbr, position, data string) string {
	return fmt.Sprintf(`{"player":[[{"player_key":"423.p.%s"},{"player_id":"%s"},{"name":{"full":"%s"}},{"editorial_team_abbr":"%s"},{"display_position":"%s"},{"position_type":"O"}],%s]}`,
		id, id, name, abbr, position, data)
}

func addData(team string) string {
	return fmt.Sprintf(`{"transaction_data":[{"type":"add","source_type":"freeagents","destination_type":"team","destination_team_name":"%s"}]}`, team)
}

func dropData(team string) string {
	return fmt.Sprintf(`{"transaction_data":{"type":"drop","source_type":"team","source_team_name":"%s","destination_type":"waivers"}}`, team)
}

func tradeData(from, to string) string {
	return fmt.Sprintf(`{"transaction_data":[{"type":"trade","source_team_name":"%s","destination_team_name":"%s"}]}`, from, to)
}

func rawJSON(id, kind, status string, ts int64, extra string, players ...string) string {
	entries := make([]string, 0, len(players)+1)
	for i, p := range players {
		entries = append(entries, fmt.Sprintf(`"%d":%s`, i, p))
	}
	entries = append(entries, fmt.Sprintf(`"count":%d`, len(players)))
	if extra != "" {
		extra = "," + extra
	}
	return fmt.Sprintf(`{"transaction_key":"423.l.1.tr.%s","transaction_id":"%s","type":"%s","status":"%s","timestamp":"%d"%s,"players":{%s}}`,
		id, id, kind, status, ts, extra, strings.Join(entries, ","))
}

func addRaw(t *testing.T, id string, ts int64, name string) transaction.Raw {
	t.Helper()
	return mustRaw(t, rawJSON(id, "add", "successful", ts, "", playerJSON("1"+id, name, "BUF", "WR", addData("Team A"))))
}

func addDropRaw(t *testing.T, id string, ts int64, added, dropped string) transaction.Raw {
	t.Helper()
	return mustRaw(t, rawJSON(id, "add/drop", "successful", ts, "",
		playerJSON("1"+id, added, "LAR", "WR", addData("Team A")),
		playerJSON("2"+id, dropped, "CLE", "WR", dropData("Team A")),
	))
}

func dropRaw(t *testing.T, id string, ts int64, name string) transaction.Raw {
	t.Helper()
	return mustRaw(t, rawJSON(id, "drop", "successful", ts, "", playerJSON("1"+id, name, "ARI", "WR", dropData("Team C"))))
}

func tradeRaw(t *testing.T, id string, ts int64) transaction.Raw {
	t.Helper()
	return mustRaw(t, rawJSON(id, "trade", "successful", ts,
		`"trader_team_name":"Team A","tradee_team_name":"Team B"`,
		playerJSON("31", "Josh Allen", "BUF", "QB", tradeData("Team A", "Team B")),
		playerJSON("32", "Derrick Henry", "BAL", "RB", tradeData("Team B", "Team A")),
	))
}

// fixedHandles serves one prepared handle, counting lookups.
type fixedHandles struct {
	ref     league.Ref
	guildID string
	handle  *LeagueHandle
	err     error
	calls   atomic.Int32
}

func (f *fixedHandles) Ref() league.Ref { return f.ref }
func (f *fixedHandles) GuildID() string { return f.guildID }
func (f *fixedHandles) EnsureValid(context.Context) (*LeagueHandle, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.handle, nil
}

type recordingAnnouncer struct {
	mu       sync.Mutex
	items    []Announcement
	failNext int
	notify   chan Announcement
}

func (a *recordingAnnouncer) Announce(_ context.Context, item Announcement) error {
	a.mu.Lock()
	if a.failNext > 0 {
		a.failNext--
		a.mu.Unlock()
		return fmt.Errorf("channel unavailable")
	}
	a.items = append(a.items, item)
	notify := a.notify
	a.mu.Unlock()
	if notify != nil {
		notify <- item
	}
	return nil
}

func (a *recordingAnnouncer) ids() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.items))
	for _, item := range a.items {
		out = append(out, item.Transaction.ID)
	}
	return out
}

func waitAnnouncement(t *testing.T, ch <-chan Announcement) Announcement {
	t.Helper()
	select {
	case item := <-ch:
		return item
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for announcement")
		return Announcement{}
	}
}
