package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jordan-day/harambot/internal/domain/transaction"
)

func TestNormalize_AddUsesListTransactionData(t *testing.T) {
	t.Parallel()

	tx, err := Normalize(addRaw(t, "101", 1700000000, "Stefon Diggs"))
	if err != nil {
		t.Fatalf("normalize add: %v", err)
	}
	if tx.Type != transaction.TypeAdd {
		t.Fatalf("unexpected type: %s", tx.Type)
	}
	if tx.ID != "101" || tx.Key != "423.l.1.tr.101" || tx.Timestamp != 1700000000 {
		t.Fatalf("unexpected identity: id=%s key=%s ts=%d", tx.ID, tx.Key, tx.Timestamp)
	}
	if len(tx.Players) != 1 {
		t.Fatalf("unexpected player count: %d", len(tx.Players))
	}
	p := tx.Players[0]
	if p.Name != "Stefon Diggs" || p.PlayerID != "1101" || p.TeamAbbr != "BUF" || p.Position != "WR" {
		t.Fatalf("unexpected player: %+v", p)
	}
	if p.DestinationTeam != "Team A" {
		t.Fatalf("unexpected destination team: %q", p.DestinationTeam)
	}
	if tx.Owner() != "Team A" {
		t.Fatalf("unexpected owner: %q", tx.Owner())
	}
}

func TestNormalize_DropAcceptsObjectTransactionData(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, rawJSON("102", "drop", "successful", 1700000100, "",
		playerJSON("7", "Zay Jones", "ARI", "WR", dropData("Team C"))))

	tx, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize drop: %v", err)
	}
	if tx.Type != transaction.TypeDrop || len(tx.Players) != 1 {
		t.Fatalf("unexpected drop: type=%s players=%d", tx.Type, len(tx.Players))
	}
	if tx.Players[0].SourceTeam != "Team C" {
		t.Fatalf("unexpected source team: %q", tx.Players[0].SourceTeam)
	}
}

func TestNormalize_AddDropKeepsAddedThenDropped(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, rawJSON("103", "add/drop", "successful", 1700000200, "",
		playerJSON("8", "Puka Nacua", "LAR", "WR", addData("Team A")),
		playerJSON("9", "Elijah Moore", "CLE", "WR", dropData("Team A")),
	))

	tx, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize add/drop: %v", err)
	}
	if tx.Type != transaction.TypeAddDrop || len(tx.Players) != 2 {
		t.Fatalf("unexpected add/drop: type=%s players=%d", tx.Type, len(tx.Players))
	}
	if tx.Players[0].Name != "Puka Nacua" || tx.Players[1].Name != "Elijah Moore" {
		t.Fatalf("unexpected order: %s, %s", tx.Players[0].Name, tx.Players[1].Name)
	}
	if len(tx.Teams) != 1 || tx.Teams[0] != "Team A" {
		t.Fatalf("unexpected teams: %v", tx.Teams)
	}
}

func TestNormalize_SkipsNullPlayerForWaiverTypes(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, `{"transaction_id":"104","type":"add/drop","status":"successful","timestamp":"1700000300",
		"players":{"0":`+playerJSON("8", "Puka Nacua", "LAR", "WR", addData("Team A"))+`,"1":null,"count":2}}`)

	tx, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize add/drop with null player: %v", err)
	}
	if len(tx.Players) != 1 {
		t.Fatalf("expected null player to be skipped, got %d players", len(tx.Players))
	}
}

func TestNormalize_IsDeterministicPerType(t *testing.T) {
	t.Parallel()

	cases := map[string]transaction.Raw{
		"add":      addRaw(t, "201", 1700000000, "Stefon Diggs"),
		"drop":     dropRaw(t, "202", 1700000010, "Zay Jones"),
		"add/drop": addDropRaw(t, "203", 1700000020, "Puka Nacua", "Elijah Moore"),
		"trade":    tradeRaw(t, "204", 1700000030),
	}
	for name, raw := range cases {
		name, raw := name, raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first, err := Normalize(raw)
			if err != nil {
				t.Fatalf("first normalize: %v", err)
			}
			second, err := Normalize(raw)
			if err != nil {
				t.Fatalf("second normalize: %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("normalize is not repeatable:\nfirst=%+v\nsecond=%+v", first, second)
			}
			if first.Type.String() != name {
				t.Fatalf("unexpected type: got=%s want=%s", first.Type, name)
			}
		})
	}
}

func TestNormalize_TradeInfersDirection(t *testing.T) {
	t.Parallel()

	tx, err := Normalize(tradeRaw(t, "105", 1700000400))
	if err != nil {
		t.Fatalf("normalize trade: %v", err)
	}
	if tx.Type != transaction.TypeTrade {
		t.Fatalf("unexpected type: %s", tx.Type)
	}
	if tx.TraderTeam != "Team A" || tx.TradeeTeam != "Team B" {
		t.Fatalf("unexpected teams: trader=%q tradee=%q", tx.TraderTeam, tx.TradeeTeam)
	}
	toB := tx.PlayersTo("Team B")
	toA := tx.PlayersTo("Team A")
	if len(toB) != 1 || toB[0].Name != "Josh Allen" {
		t.Fatalf("unexpected players to Team B: %+v", toB)
	}
	if len(toA) != 1 || toA[0].Name != "Derrick Henry" {
		t.Fatalf("unexpected players to Team A: %+v", toA)
	}
}

func TestNormalize_TradeRejectsUnknownDestination(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, rawJSON("106", "trade", "successful", 1700000500,
		`"trader_team_name":"Team A","tradee_team_name":"Team B"`,
		playerJSON("31", "Josh Allen", "BUF", "QB", tradeData("Team A", "Team Z"))))

	_, err := Normalize(raw)
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected ErrNormalization, got %v", err)
	}
}

func TestNormalize_TradeRejectsNullPlayer(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, `{"transaction_id":"107","type":"trade","status":"successful","timestamp":"1700000600",
		"trader_team_name":"Team A","tradee_team_name":"Team B","players":{"0":null,"count":1}}`)

	_, err := Normalize(raw)
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected ErrNormalization, got %v", err)
	}
}

func TestNormalize_RejectsUnknownTypeAndMissingTimestamp(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown type":      `{"transaction_id":"108","type":"commish","timestamp":"1700000700","players":{"count":0}}`,
		"missing timestamp": `{"transaction_id":"109","type":"add","players":{"count":0}}`,
		"short slots":       `{"transaction_id":"110","type":"add","timestamp":"1700000700","players":{"0":{"player":[[{"player_key":"k"},{"player_id":"1"}]]},"count":1}}`,
	}
	for name, payload := range cases {
		name, payload := name, payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Normalize(mustRaw(t, payload)); !errors.Is(err, ErrNormalization) {
				t.Fatalf("expected ErrNormalization, got %v", err)
			}
		})
	}
}

func TestNormalize_AcceptsPrimaryPositionSynonym(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, `{"transaction_id":"111","type":"add","timestamp":"1700000800","players":{"0":{"player":[[
		{"player_key":"423.p.5"},{"player_id":"5"},{"name":{"full":"Tank Dell"}},{"editorial_team_abbr":"HOU"},{"primary_position":"WR"}
	],`+addData("Team D")+`]},"count":1}}`)

	tx, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tx.Players[0].Position != "WR" {
		t.Fatalf("unexpected position: %q", tx.Players[0].Position)
	}
}

func TestNormalizeAll_SkipsMalformedAndSortChronologically(t *testing.T) {
	t.Parallel()

	raws := []transaction.Raw{
		addRaw(t, "3", 300, "C"),
		mustRaw(t, `{"transaction_id":"bad","type":"mystery","timestamp":"100"}`),
		addRaw(t, "1", 100, "A"),
		addRaw(t, "2", 200, "B"),
	}

	txs := NormalizeAll(context.Background(), raws, testLogger)
	if len(txs) != 3 {
		t.Fatalf("unexpected normalized count: got=%d want=3", len(txs))
	}
	SortChronologically(txs)
	for i, want := range []string{"1", "2", "3"} {
		if txs[i].ID != want {
			t.Fatalf("unexpected order at %d: got=%s want=%s", i, txs[i].ID, want)
		}
	}
}
