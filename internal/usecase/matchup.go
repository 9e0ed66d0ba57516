package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
)

const matchupDivider = "--------------------------------------"

// BuildScoreboard renders each matchup as "A vs B" plus both teams' lines.
func BuildScoreboard(week int, scoringType string, matchups []fantasy.Matchup) fantasy.Scoreboard {
	headToHead := fantasy.Settings{ScoringType: scoringType}.HeadToHead()
	out := fantasy.Scoreboard{
		Week:    week,
		Details: make([]fantasy.MatchupDetail, 0, len(matchups)),
	}
	for _, m := range matchups {
		home, away := m.Teams[0], m.Teams[1]
		out.Details = append(out.Details, fantasy.MatchupDetail{
			Name:  fmt.Sprintf("%s vs %s", home.Name, away.Name),
			Value: matchupTeamText(home, headToHead) + matchupTeamText(away, headToHead) + matchupDivider,
		})
	}
	return out
}

func matchupTeamText(team fantasy.MatchupTeam, headToHead bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "***%s***\n", team.Name)
	if headToHead {
		fmt.Fprintf(&b, "Projected Score: %s\n", team.ProjectedPoints)
		fmt.Fprintf(&b, "Actual Score: %s\n", team.Points)
		if team.HasWinProbability {
			fmt.Fprintf(&b, "Win Probability: %d%%\n", int(math.Round(team.WinProbability*100)))
		}
		return b.String()
	}
	fmt.Fprintf(&b, "Score: %s\n", team.Points)
	fmt.Fprintf(&b, "Remaining Games: %d\n", team.RemainingGames)
	fmt.Fprintf(&b, "Live Games: %d\n", team.LiveGames)
	fmt.Fprintf(&b, "Completed Games: %d\n", team.CompletedGames)
	return b.String()
}
