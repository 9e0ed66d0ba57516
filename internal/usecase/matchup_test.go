package usecase

import (
	"strings"
	"testing"

	"github.com/jordan-day/harambot/internal/domain/fantasy"
)

func TestBuildScoreboard_PointsLeagueShowsGameCounts(t *testing.T) {
	t.Parallel()

	board := BuildScoreboard(12, "point", []fantasy.Matchup{{
		Week: 12,
		Teams: [2]fantasy.MatchupTeam{
			{Name: "Team A", Points: "431.5", RemainingGames: 3, LiveGames: 1, CompletedGames: 20},
			{Name: "Team B", Points: "402.0", RemainingGames: 5, LiveGames: 0, CompletedGames: 19},
		},
	}})

	if board.Week != 12 || len(board.Details) != 1 {
		t.Fatalf("unexpected scoreboard: %+v", board)
	}
	value := board.Details[0].Value
	for _, want := range []string{"***Team A***\nScore: 431.5\n", "Remaining Games: 5", "Live Games: 1", "Completed Games: 19"} {
		if !strings.Contains(value, want) {
			t.Fatalf("expected %q in %q", want, value)
		}
	}
	if strings.Contains(value, "Projected") {
		t.Fatalf("points league must not show projections: %q", value)
	}
	if !strings.HasSuffix(value, matchupDivider) {
		t.Fatalf("expected divider suffix: %q", value)
	}
}

func TestBuildScoreboard_HeadToHeadWithoutProbability(t *testing.T) {
	t.Parallel()

	board := BuildScoreboard(1, "head", []fantasy.Matchup{{
		Teams: [2]fantasy.MatchupTeam{{Name: "A", Points: "0", ProjectedPoints: "99"}, {Name: "B"}},
	}})
	value := board.Details[0].Value
	if !strings.Contains(value, "Projected Score: 99") || strings.Contains(value, "Win Probability") {
		t.Fatalf("unexpected head-to-head value: %q", value)
	}
}
