package yahoo

import (
	"github.com/jordan-day/harambot/internal/domain/fantasy"
	"github.com/jordan-day/harambot/internal/domain/transaction"
)

func parseStandings(teams any) []fantasy.Standing {
	entries := indexed(teams)
	out := make([]fantasy.Standing, 0, len(entries))
	for _, entry := range entries {
		attrs, extra, ok := record(entry, "team")
		if !ok {
			continue
		}
		standing := getMap(extra, "team_standings")
		totals := getMap(standing, "outcome_totals")
		out = append(out, fantasy.Standing{
			Rank:    int(getInt64(standing, "rank")),
			TeamKey: getString(attrs, "team_key"),
			Name:    getString(attrs, "name"),
			Wins:    int(getInt64(totals, "wins")),
			Losses:  int(getInt64(totals, "losses")),
			Ties:    int(getInt64(totals, "ties")),
		})
	}
	return out
}

func parseTeams(teams any) []fantasy.Team {
	entries := indexed(teams)
	out := make([]fantasy.Team, 0, len(entries))
	for _, entry := range entries {
		attrs, _, ok := record(entry, "team")
		if !ok {
			continue
		}
		out = append(out, fantasy.Team{
			Key:                 getString(attrs, "team_key"),
			ID:                  getString(attrs, "team_id"),
			Name:                getString(attrs, "name"),
			OwnedByCurrentLogin: getBool(attrs, "is_owned_by_current_login"),
		})
	}
	return out
}

func parseRoster(players any) []fantasy.RosterPlayer {
	entries := indexed(players)
	out := make([]fantasy.RosterPlayer, 0, len(entries))
	for _, entry := range entries {
		attrs, extra, ok := record(entry, "player")
		if !ok {
			continue
		}
		out = append(out, fantasy.RosterPlayer{
			PlayerKey:        getString(attrs, "player_key"),
			PlayerID:         getString(attrs, "player_id"),
			Name:             nestedString(attrs, "name", "full"),
			SelectedPosition: getString(flatten(extra["selected_position"]), "position"),
			Status:           getString(attrs, "status"),
		})
	}
	return out
}

func parsePlayers(players any) []fantasy.Player {
	entries := indexed(players)
	out := make([]fantasy.Player, 0, len(entries))
	for _, entry := range entries {
		attrs, extra, ok := record(entry, "player")
		if !ok {
			continue
		}
		out = append(out, fantasy.Player{
			Key:             getString(attrs, "player_key"),
			ID:              getString(attrs, "player_id"),
			Name:            nestedString(attrs, "name", "full"),
			UniformNumber:   getString(attrs, "uniform_number"),
			PrimaryPosition: getString(attrs, "primary_position"),
			DisplayPosition: getString(attrs, "display_position"),
			TeamAbbr:        getString(attrs, "editorial_team_abbr"),
			ByeWeek:         nestedString(attrs, "bye_weeks", "week"),
			TotalPoints:     nestedString(extra, "player_points", "total"),
			ImageURL:        getString(attrs, "image_url"),
			HeadshotURL:     nestedString(attrs, "headshot", "url"),
		})
	}
	return out
}

func parseOwnership(players any) map[string]fantasy.Ownership {
	entries := indexed(players)
	out := make(map[string]fantasy.Ownership, len(entries))
	for _, entry := range entries {
		attrs, extra, ok := record(entry, "player")
		if !ok {
			continue
		}
		id := getString(attrs, "player_id")
		ownership := getMap(extra, "ownership")
		out[id] = fantasy.Ownership{
			PlayerID:      id,
			OwnershipType: getString(ownership, "ownership_type"),
			OwnerTeamName: getString(ownership, "owner_team_name"),
		}
	}
	return out
}

func parseMatchups(scoreboard map[string]any, week int) []fantasy.Matchup {
	entries := indexed(getMap(scoreboard, "0")["matchups"])
	out := make([]fantasy.Matchup, 0, len(entries))
	for _, entry := range entries {
		matchup := getMap(flatten(entry), "matchup")
		if matchup == nil {
			continue
		}
		teams := indexed(getMap(matchup, "0")["teams"])
		if len(teams) != 2 {
			continue
		}
		m := fantasy.Matchup{Week: int(getInt64(matchup, "week"))}
		if m.Week == 0 {
			m.Week = week
		}
		for i, team := range teams {
			m.Teams[i] = parseMatchupTeam(team)
		}
		out = append(out, m)
	}
	return out
}

func parseMatchupTeam(entry any) fantasy.MatchupTeam {
	attrs, extra, _ := record(entry, "team")
	games := getMap(getMap(extra, "team_remaining_games"), "total")
	team := fantasy.MatchupTeam{
		Key:             getString(attrs, "team_key"),
		Name:            getString(attrs, "name"),
		Points:          nestedString(extra, "team_points", "total"),
		ProjectedPoints: nestedString(extra, "team_projected_points", "total"),
		RemainingGames:  int(getInt64(games, "remaining_games")),
		LiveGames:       int(getInt64(games, "live_games")),
		CompletedGames:  int(getInt64(games, "completed_games")),
	}
	team.WinProbability, team.HasWinProbability = getFloat(extra, "win_probability")
	return team
}

func parseProposedTrades(transactions any) []fantasy.ProposedTrade {
	entries := indexed(transactions)
	out := make([]fantasy.ProposedTrade, 0, len(entries))
	for _, entry := range entries {
		meta, players, ok := splitTransaction(entry)
		if !ok {
			continue
		}
		trade := fantasy.ProposedTrade{
			Key:           getString(meta, "transaction_key"),
			Status:        getString(meta, "status"),
			TraderTeamKey: getString(meta, "trader_team_key"),
			TradeeTeamKey: getString(meta, "tradee_team_key"),
		}
		for _, p := range indexed(players) {
			attrs, extra, ok := record(p, "player")
			if !ok {
				continue
			}
			player := fantasy.TradePlayer{
				Key:  getString(attrs, "player_key"),
				ID:   getString(attrs, "player_id"),
				Name: nestedString(attrs, "name", "full"),
			}
			if getString(flatten(extra["transaction_data"]), "source_team_key") == trade.TraderTeamKey {
				trade.TraderPlayers = append(trade.TraderPlayers, player)
			} else {
				trade.TradeePlayers = append(trade.TradeePlayers, player)
			}
		}
		out = append(out, trade)
	}
	return out
}

// parseTransactions merges each transaction's metadata with its players map,
// keeping the players' positional layout for the normalizer.
func parseTransactions(transactions any) []transaction.Raw {
	entries := indexed(transactions)
	out := make([]transaction.Raw, 0, len(entries))
	for _, entry := range entries {
		meta, players, ok := splitTransaction(entry)
		if !ok {
			continue
		}
		raw := make(transaction.Raw, len(meta)+1)
		for k, v := range meta {
			raw[k] = v
		}
		raw["players"] = players
		out = append(out, raw)
	}
	return out
}

func splitTransaction(entry any) (map[string]any, map[string]any, bool) {
	wrapper, ok := entry.(map[string]any)
	if !ok {
		return nil, nil, false
	}
	parts, ok := wrapper["transaction"].([]any)
	if !ok || len(parts) == 0 {
		return nil, nil, false
	}
	meta := flatten(parts[0])
	var players map[string]any
	for _, part := range parts[1:] {
		if p := getMap(flatten(part), "players"); p != nil {
			players = p
		}
	}
	return meta, players, meta != nil
}
