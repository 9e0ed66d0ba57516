package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/transaction"
)

type fakeTransactionSource struct {
	mu        sync.Mutex
	waivers   []transaction.Raw
	trades    []transaction.Raw
	waiverErr error
	tradeErr  error
	windows   []time.Time
}

func (s *fakeTransactionSource) LatestWaiverTransactions(_ context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, windowStart)
	return s.waivers, s.waiverErr
}

func (s *fakeTransactionSource) LatestTrades(_ context.Context, windowStart time.Time) ([]transaction.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, windowStart)
	return s.trades, s.tradeErr
}

func (s *fakeTransactionSource) setWaivers(raws ...transaction.Raw) {
	s.mu.Lock()
	s.waivers = raws
	s.mu.Unlock()
}

type headshotLookup map[string]string

func (h headshotLookup) PlayerDetails(_ context.Context, id string) (fantasy.Player, bool) {
	url, ok := h[id]
	return fantasy.Player{ID: id, HeadshotURL: url}, ok
}

func newTestPoller(t *testing.T, source TransactionSource, announcer Announcer, clk clock.Clock) *TransactionPoller {
	t.Helper()
	return NewTransactionPoller(TransactionPollerConfig{
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		Source:    source,
		Players:   headshotLookup{},
		Announcer: announcer,
		Clock:     clk,
		Lookback:  60 * time.Second,
		Logger:    testLogger,
	})
}

func TestTransactionPoller_Tick_StrictLookbackBoundary(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(
		addRaw(t, "59", now-59, "Inside"),
		addRaw(t, "60", now-60, "Boundary"),
		addRaw(t, "61", now-61, "Outside"),
	)
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	n, err := poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpected announced count: got=%d want=1", n)
	}
	if ids := announcer.ids(); len(ids) != 1 || ids[0] != "59" {
		t.Fatalf("unexpected announced ids: %v", ids)
	}
	for _, window := range source.windows {
		if window.Unix() != now-60 {
			t.Fatalf("unexpected window start: got=%d want=%d", window.Unix(), now-60)
		}
	}
}

func TestTransactionPoller_Tick_AnnouncesOnlyRecentTransaction(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(addRaw(t, "old", now-3600, "Old"), addRaw(t, "new", now-10, "New"))
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	if _, err := poller.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if ids := announcer.ids(); len(ids) != 1 || ids[0] != "new" {
		t.Fatalf("unexpected announced ids: %v", ids)
	}
	if got := poller.LastPoll(); !got.Equal(clk.Now()) {
		t.Fatalf("unexpected last poll: %v", got)
	}
}

func TestTransactionPoller_Tick_AnnouncesOnlyRecentAddDrop(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(
		addDropRaw(t, "stale", now-3600, "Old Add", "Old Drop"),
		addDropRaw(t, "fresh", now-10, "New Add", "New Drop"),
	)
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	n, err := poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpected announced count: got=%d want=1", n)
	}
	announcer.mu.Lock()
	defer announcer.mu.Unlock()
	got := announcer.items[0].Transaction
	if got.ID != "fresh" || got.Type != transaction.TypeAddDrop || len(got.Players) != 2 {
		t.Fatalf("unexpected announcement: %+v", got)
	}
	if got.Players[0].Name != "New Add" || got.Players[1].Name != "New Drop" {
		t.Fatalf("unexpected player order: %+v", got.Players)
	}
}

func TestTransactionPoller_Tick_DoesNotRepeatAcrossOverlappingTicks(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	start := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(addRaw(t, "a", start-5, "A"))
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	if _, err := poller.Tick(context.Background()); err != nil {
		t.Fatalf("first tick: %v", err)
	}

	clk.Add(30 * time.Second)
	source.setWaivers(addRaw(t, "a", start-5, "A"), addRaw(t, "b", start+20, "B"))
	n, err := poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpected second tick count: got=%d want=1", n)
	}
	ids := announcer.ids()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected announced ids: %v", ids)
	}
}

func TestTransactionPoller_Tick_SortsByTimestampAcrossSources(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{
		trades: []transaction.Raw{tradeRaw(t, "t1", now-30)},
	}
	source.setWaivers(addRaw(t, "w2", now-5, "Late"), addRaw(t, "w1", now-50, "Early"))
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	if _, err := poller.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	ids := announcer.ids()
	if len(ids) != 3 || ids[0] != "w1" || ids[1] != "t1" || ids[2] != "w2" {
		t.Fatalf("unexpected dispatch order: %v", ids)
	}
}

func TestTransactionPoller_Tick_RetriesAfterAnnouncerFailure(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(addRaw(t, "x", now-20, "X"))
	announcer := &recordingAnnouncer{failNext: 1}
	poller := newTestPoller(t, source, announcer, clk)

	n, err := poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing announced on failure, got %d", n)
	}

	clk.Add(10 * time.Second)
	n, err = poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected retry to announce, got %d", n)
	}
}

func TestTransactionPoller_Tick_SkipsMalformedAndReportsFetchError(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{tradeErr: errors.New("yahoo down")}
	source.setWaivers(
		mustRaw(t, `{"transaction_id":"bad","type":"commish","timestamp":"1699999990"}`),
		addRaw(t, "ok", now-10, "Fine"),
	)
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	n, err := poller.Tick(context.Background())
	if err == nil {
		t.Fatalf("expected trade fetch error")
	}
	if n != 1 {
		t.Fatalf("expected waiver to be announced despite trade error, got %d", n)
	}
}

func TestTransactionPoller_Tick_AttachesHeadshotForWaiverMoves(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(addRaw(t, "h", now-1, "Headshot Guy"))
	announcer := &recordingAnnouncer{}
	poller := NewTransactionPoller(TransactionPollerConfig{
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		Source:    source,
		Players:   headshotLookup{"1h": "https://img.example/1h.png"},
		Announcer: announcer,
		Clock:     clk,
		Logger:    testLogger,
	})

	if _, err := poller.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	announcer.mu.Lock()
	defer announcer.mu.Unlock()
	if len(announcer.items) != 1 {
		t.Fatalf("unexpected announcement count: %d", len(announcer.items))
	}
	got := announcer.items[0]
	if got.HeadshotURL != "https://img.example/1h.png" || got.ChannelID != "channel-1" {
		t.Fatalf("unexpected announcement: %+v", got)
	}
}

func TestTransactionPoller_Tick_SkipsWaiverMoveWithoutPlayers(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	now := clk.Now().Unix()

	source := &fakeTransactionSource{}
	source.setWaivers(
		mustRaw(t, fmt.Sprintf(`{"transaction_id":"empty","type":"add","status":"successful","timestamp":"%d","players":{"0":null,"count":1}}`, now-5)),
		addRaw(t, "full", now-4, "Real Player"),
	)
	announcer := &recordingAnnouncer{}
	poller := newTestPoller(t, source, announcer, clk)

	n, err := poller.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if ids := announcer.ids(); n != 1 || len(ids) != 1 || ids[0] != "full" {
		t.Fatalf("unexpected announcements: n=%d ids=%v", n, ids)
	}
}

// blockingSource parks waiver fetches until release is closed.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) LatestWaiverTransactions(ctx context.Context, _ time.Time) ([]transaction.Raw, error) {
	close(s.entered)
	select {
	case <-s.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *blockingSource) LatestTrades(context.Context, time.Time) ([]transaction.Raw, error) {
	return nil, nil
}

func TestTransactionPoller_StateReadableWhileTickWaitsOnUpstream(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	source := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	poller := newTestPoller(t, source, &recordingAnnouncer{}, clk)

	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		_, _ = poller.Tick(context.Background())
	}()
	<-source.entered

	read := make(chan string, 1)
	go func() {
		poller.SetChannel("channel-2")
		_ = poller.LastPoll()
		read <- poller.ChannelID()
	}()
	select {
	case got := <-read:
		if got != "channel-2" {
			t.Fatalf("unexpected channel: %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel state blocked while a tick waits on upstream")
	}

	close(source.release)
	<-tickDone
	if got := poller.LastPoll(); !got.Equal(clk.Now()) {
		t.Fatalf("unexpected last poll: %v", got)
	}
}

func TestSelectSince_ExcludesCutoffSecond(t *testing.T) {
	t.Parallel()

	cutoff := time.Unix(1000, 0)
	got := SelectSince([]transaction.Transaction{{ID: "a", Timestamp: 1000}, {ID: "b", Timestamp: 1001}}, cutoff)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected selection: %+v", got)
	}
}
