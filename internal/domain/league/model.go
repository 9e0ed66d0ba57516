package league

import (
	"fmt"
	"strings"
)

// Supported Yahoo game codes.
const (
	TypeNFL = "nfl"
	TypeNBA = "nba"
	TypeNHL = "nhl"
	TypeMLB = "mlb"
)

// Ref identifies a league independently of credentials.
type Ref struct {
	Type string
	ID   string
}

func (r Ref) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	switch r.Normalized().Type {
	case TypeNFL, TypeNBA, TypeNHL, TypeMLB:
		return nil
	case "":
		return fmt.Errorf("league type is required")
	default:
		return fmt.Errorf("unsupported league type %q", r.Type)
	}
}

func (r Ref) Normalized() Ref {
	return Ref{
		Type: strings.ToLower(strings.TrimSpace(r.Type)),
		ID:   strings.TrimSpace(r.ID),
	}
}

// Key builds the upstream league key "{game_id}.l.{league_id}".
func (r Ref) Key(gameID string) string {
	return fmt.Sprintf("%s.l.%s", strings.TrimSpace(gameID), r.Normalized().ID)
}

func (r Ref) String() string {
	n := r.Normalized()
	return n.Type + ":" + n.ID
}
