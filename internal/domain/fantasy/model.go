package fantasy

import (
	"fmt"
	"strings"
)

const ScoringHeadToHead = "head"

// Settings carries the league settings the relay depends on.
type Settings struct {
	Name        string
	ScoringType string
	CurrentWeek int
}

func (s Settings) HeadToHead() bool {
	return strings.EqualFold(strings.TrimSpace(s.ScoringType), ScoringHeadToHead)
}

// Standing is one row of the league table, in rank order.
type Standing struct {
	Rank    int
	TeamKey string
	Name    string
	Wins    int
	Losses  int
	Ties    int
}

func (s Standing) Place() string {
	return fmt.Sprintf("%d. %s", s.Rank, s.Name)
}

func (s Standing) Record() string {
	return fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties)
}

// Team is a league member team.
type Team struct {
	Key                 string
	ID                  string
	Name                string
	OwnedByCurrentLogin bool
}

type RosterPlayer struct {
	PlayerKey        string
	PlayerID         string
	Name             string
	SelectedPosition string
	Status           string
}

// Player is the detail view used by stats lookups and announcement thumbnails.
type Player struct {
	Key             string
	ID              string
	Name            string
	UniformNumber   string
	PrimaryPosition string
	DisplayPosition string
	TeamAbbr        string
	ByeWeek         string
	TotalPoints     string
	ImageURL        string
	HeadshotURL     string
	Owner           string
}

const (
	OwnershipFreeAgents = "freeagents"
	OwnershipWaivers    = "waivers"
	OwnershipTeam       = "team"
)

type Ownership struct {
	PlayerID      string
	OwnershipType string
	OwnerTeamName string
}

// Text renders who holds the player: the owning team name, else a label for
// the free agent and waiver pools, else empty.
func (o Ownership) Text() string {
	if name := strings.TrimSpace(o.OwnerTeamName); name != "" {
		return name
	}
	switch o.OwnershipType {
	case OwnershipFreeAgents:
		return "Free Agent"
	case OwnershipWaivers:
		return "On Waivers"
	default:
		return ""
	}
}

// MatchupTeam holds both scoring flavours; which fields are meaningful depends
// on the league scoring type.
type MatchupTeam struct {
	Key               string
	Name              string
	Points            string
	ProjectedPoints   string
	WinProbability    float64
	HasWinProbability bool
	RemainingGames    int
	LiveGames         int
	CompletedGames    int
}

type Matchup struct {
	Week  int
	Teams [2]MatchupTeam
}

// MatchupDetail is one rendered matchup line pair.
type MatchupDetail struct {
	Name  string
	Value string
}

type Scoreboard struct {
	Week    int
	Details []MatchupDetail
}

type TradePlayer struct {
	Key  string
	ID   string
	Name string
}

// ProposedTrade is a trade offer visible to the logged in manager.
type ProposedTrade struct {
	Key           string
	Status        string
	TraderTeamKey string
	TradeeTeamKey string
	TraderPlayers []TradePlayer
	TradeePlayers []TradePlayer
}

const TradeStatusAccepted = "accepted"

// TradeReview is an accepted trade enriched for league approval.
type TradeReview struct {
	Trade         ProposedTrade
	TraderName    string
	TradeeName    string
	TraderDetails []Player
	TradeeDetails []Player
}

func (r TradeReview) Summary() string {
	return fmt.Sprintf("%s sends %s to %s for %s",
		r.TraderName, joinNames(r.Trade.TraderPlayers), r.TradeeName, joinNames(r.Trade.TradeePlayers))
}

func joinNames(players []TradePlayer) string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
