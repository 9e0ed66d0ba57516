package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jordan-day/harambot/internal/domain/transaction"
	"github.com/jordan-day/harambot/internal/platform/logging"
)

// Positional slots of the upstream player record.
const (
	slotPlayerKey = 0
	slotPlayerID  = 1
	slotName      = 2
	slotTeamAbbr  = 3
	slotPosition  = 4
)

type parsedPlayer struct {
	present         bool
	key             string
	id              string
	name            string
	teamAbbr        string
	position        string
	sourceTeam      string
	destinationTeam string
}

type parsedTransaction struct {
	id         string
	key        string
	kind       transaction.Type
	status     string
	timestamp  int64
	traderTeam string
	tradeeTeam string
	players    []parsedPlayer
}

// Normalize converts one raw upstream transaction into a Transaction. Errors
// wrap ErrNormalization.
func Normalize(raw transaction.Raw) (transaction.Transaction, error) {
	parsed, err := parseTransaction(raw)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("%w: id=%s: %v", ErrNormalization, raw.ID(), err)
	}

	var players []transaction.PlayerMovement
	switch parsed.kind {
	case transaction.TypeAdd, transaction.TypeDrop:
		players = movements(parsed.players, 1)
	case transaction.TypeAddDrop:
		players = movements(parsed.players, 2)
	case transaction.TypeTrade:
		players, err = tradeMovements(parsed)
		if err != nil {
			return transaction.Transaction{}, fmt.Errorf("%w: id=%s: %v", ErrNormalization, parsed.id, err)
		}
	default:
		return transaction.Transaction{}, fmt.Errorf("%w: id=%s: unhandled type %s", ErrNormalization, parsed.id, parsed.kind)
	}

	out := transaction.Transaction{
		ID:        parsed.id,
		Key:       parsed.key,
		Type:      parsed.kind,
		Status:    parsed.status,
		Timestamp: parsed.timestamp,
		Players:   players,
	}
	if parsed.kind == transaction.TypeTrade {
		out.TraderTeam = parsed.traderTeam
		out.TradeeTeam = parsed.tradeeTeam
		out.Teams = []string{parsed.traderTeam, parsed.tradeeTeam}
	} else {
		out.Teams = involvedTeams(players)
	}
	return out, nil
}

// NormalizeAll normalizes raws, logging and skipping the ones that fail.
func NormalizeAll(ctx context.Context, raws []transaction.Raw, logger *logging.Logger) []transaction.Transaction {
	if logger == nil {
		logger = logging.Default()
	}
	out := make([]transaction.Transaction, 0, len(raws))
	for _, raw := range raws {
		tx, err := Normalize(raw)
		if err != nil {
			logger.WarnContext(ctx, "skip malformed transaction", "transaction_id", raw.ID(), "type", raw.TypeName(), "error", err)
			continue
		}
		out = append(out, tx)
	}
	return out
}

// SortChronologically orders by timestamp, then id, in place.
func SortChronologically(txs []transaction.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		return txs[i].ID < txs[j].ID
	})
}

func movements(players []parsedPlayer, limit int) []transaction.PlayerMovement {
	out := make([]transaction.PlayerMovement, 0, limit)
	for i, p := range players {
		if i >= limit {
			break
		}
		if !p.present {
			continue
		}
		out = append(out, p.movement())
	}
	return out
}

func tradeMovements(parsed parsedTransaction) ([]transaction.PlayerMovement, error) {
	if parsed.traderTeam == "" || parsed.tradeeTeam == "" {
		return nil, fmt.Errorf("trade is missing participating team names")
	}
	out := make([]transaction.PlayerMovement, 0, len(parsed.players))
	for i, p := range parsed.players {
		if !p.present {
			return nil, fmt.Errorf("trade player %d is empty", i)
		}
		switch p.destinationTeam {
		case parsed.traderTeam, parsed.tradeeTeam:
			out = append(out, p.movement())
		default:
			return nil, fmt.Errorf("trade player %s destination %q matches neither %q nor %q", p.name, p.destinationTeam, parsed.traderTeam, parsed.tradeeTeam)
		}
	}
	return out, nil
}

func involvedTeams(players []transaction.PlayerMovement) []string {
	seen := make(map[string]struct{}, len(players)*2)
	out := make([]string, 0, len(players)*2)
	for _, p := range players {
		for _, team := range []string{p.SourceTeam, p.DestinationTeam} {
			if team == "" {
				continue
			}
			if _, ok := seen[team]; ok {
				continue
			}
			seen[team] = struct{}{}
			out = append(out, team)
		}
	}
	return out
}

func (p parsedPlayer) movement() transaction.PlayerMovement {
	return transaction.PlayerMovement{
		PlayerKey:       p.key,
		PlayerID:        p.id,
		Name:            p.name,
		TeamAbbr:        p.teamAbbr,
		Position:        p.position,
		SourceTeam:      p.sourceTeam,
		DestinationTeam: p.destinationTeam,
	}
}

func parseTransaction(raw transaction.Raw) (parsedTransaction, error) {
	kind, err := transaction.ParseType(raw.TypeName())
	if err != nil {
		return parsedTransaction{}, err
	}
	ts, ok := raw.Timestamp()
	if !ok {
		return parsedTransaction{}, fmt.Errorf("missing timestamp")
	}

	out := parsedTransaction{
		id:         raw.ID(),
		key:        rawString(raw, "transaction_key"),
		kind:       kind,
		status:     raw.Status(),
		timestamp:  ts,
		traderTeam: rawString(raw, "trader_team_name"),
		tradeeTeam: rawString(raw, "tradee_team_name"),
	}

	players, _ := raw["players"].(map[string]any)
	count := playerCount(players)
	out.players = make([]parsedPlayer, 0, count)
	for i := 0; i < count; i++ {
		p, err := parsePlayer(players[strconv.Itoa(i)])
		if err != nil {
			return parsedTransaction{}, fmt.Errorf("player %d: %w", i, err)
		}
		out.players = append(out.players, p)
	}
	return out, nil
}

// playerCount trusts "count" when present, else the highest numeric index.
func playerCount(players map[string]any) int {
	if players == nil {
		return 0
	}
	if n, ok := asInt(players["count"]); ok && n >= 0 {
		return n
	}
	count := 0
	for key := range players {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if idx+1 > count {
			count = idx + 1
		}
	}
	return count
}

// parsePlayer reads {"player": [[slot0..slotN], {"transaction_data": ...}]}.
// Null placeholders come back with present=false.
func parsePlayer(entry any) (parsedPlayer, error) {
	wrapper, ok := entry.(map[string]any)
	if !ok || wrapper == nil {
		return parsedPlayer{}, nil
	}
	record, ok := wrapper["player"].([]any)
	if !ok || len(record) == 0 {
		return parsedPlayer{}, nil
	}
	slots, ok := record[0].([]any)
	if !ok || len(slots) == 0 {
		return parsedPlayer{}, nil
	}
	if len(slots) <= slotPosition {
		return parsedPlayer{}, fmt.Errorf("expected at least %d player slots, got %d", slotPosition+1, len(slots))
	}

	p := parsedPlayer{present: true}
	p.key = slotString(slots[slotPlayerKey], "player_key")
	p.id = slotString(slots[slotPlayerID], "player_id")
	if nameSlot, ok := slots[slotName].(map[string]any); ok {
		if name, ok := nameSlot["name"].(map[string]any); ok {
			p.name = stringValue(name["full"])
		}
	}
	p.teamAbbr = slotString(slots[slotTeamAbbr], "editorial_team_abbr")
	p.position = slotString(slots[slotPosition], "display_position")
	if p.position == "" {
		p.position = slotString(slots[slotPosition], "primary_position")
	}
	if p.id == "" || p.name == "" {
		return parsedPlayer{}, fmt.Errorf("player slots missing id or name")
	}

	if len(record) > 1 {
		data := transactionData(record[1])
		p.sourceTeam = stringValue(data["source_team_name"])
		p.destinationTeam = stringValue(data["destination_team_name"])
	}
	return p, nil
}

// transactionData accepts both the list form (adds, trades) and the object
// form (drops) of "transaction_data".
func transactionData(v any) map[string]any {
	holder, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	switch data := holder["transaction_data"].(type) {
	case map[string]any:
		return data
	case []any:
		if len(data) == 0 {
			return nil
		}
		first, _ := data[0].(map[string]any)
		return first
	default:
		return nil
	}
}

func slotString(slot any, field string) string {
	m, ok := slot.(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(m[field])
}

func rawString(raw transaction.Raw, field string) string {
	return stringValue(raw[field])
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

func asInt(v any) (int, bool) {
	switch typed := v.(type) {
	case float64:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		return n, err == nil
	default:
		return 0, false
	}
}
