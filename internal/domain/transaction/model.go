package transaction

import (
	"fmt"
	"strings"
	"time"
)

// Type is the closed set of transaction kinds the relay understands.
type Type int

const (
	TypeUnknown Type = iota
	TypeAdd
	TypeDrop
	TypeAddDrop
	TypeTrade
)

func (t Type) String() string {
	switch t {
	case TypeAdd:
		return "add"
	case TypeDrop:
		return "drop"
	case TypeAddDrop:
		return "add/drop"
	case TypeTrade:
		return "trade"
	default:
		return "unknown"
	}
}

// ParseType maps the upstream type string. Unknown strings are an error, never
// a zero-value fallthrough.
func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "add":
		return TypeAdd, nil
	case "drop":
		return TypeDrop, nil
	case "add/drop":
		return TypeAddDrop, nil
	case "trade":
		return TypeTrade, nil
	default:
		return TypeUnknown, fmt.Errorf("unsupported transaction type %q", raw)
	}
}

// Raw is an upstream transaction payload: metadata merged with a "players" map
// keyed by string indices plus "count".
type Raw map[string]any

func (r Raw) ID() string {
	switch v := r["transaction_id"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%d", int64(v))
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func (r Raw) TypeName() string {
	v, _ := r["type"].(string)
	return strings.TrimSpace(v)
}

func (r Raw) Status() string {
	v, _ := r["status"].(string)
	return strings.TrimSpace(v)
}

// Timestamp returns unix seconds. Yahoo sends it as a numeric string.
func (r Raw) Timestamp() (int64, bool) {
	switch v := r["timestamp"].(type) {
	case string:
		var out int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &out); err != nil {
			return 0, false
		}
		return out, true
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// PlayerMovement is one player changing hands inside a transaction.
type PlayerMovement struct {
	PlayerKey       string
	PlayerID        string
	Name            string
	TeamAbbr        string
	Position        string
	SourceTeam      string
	DestinationTeam string
}

// Transaction is the normalized form of every upstream transaction kind.
type Transaction struct {
	ID         string
	Key        string
	Type       Type
	Status     string
	Timestamp  int64
	Players    []PlayerMovement
	Teams      []string
	TraderTeam string
	TradeeTeam string
}

func (t Transaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// Owner is the team credited with the transaction in announcements.
func (t Transaction) Owner() string {
	if len(t.Players) == 0 {
		return ""
	}
	switch t.Type {
	case TypeDrop:
		return t.Players[0].SourceTeam
	case TypeTrade:
		return t.TraderTeam
	default:
		return t.Players[0].DestinationTeam
	}
}

// PlayersTo returns the trade movements landing on team.
func (t Transaction) PlayersTo(team string) []PlayerMovement {
	out := make([]PlayerMovement, 0, len(t.Players))
	for _, p := range t.Players {
		if p.DestinationTeam == team {
			out = append(out, p)
		}
	}
	return out
}
