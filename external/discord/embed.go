package discord

import (
	"fmt"

	"github.com/jordan-day/harambot/internal/domain/transaction"
)

const (
	colorAdd     = 0x06B900
	colorDrop    = 0xFF0000
	colorAddDrop = 0xFFFF00
	colorTrade   = 0xFF00FF

	sectionRule = "====================="
)

type Embed struct {
	Title     string          `json:"title,omitempty"`
	Color     int             `json:"color,omitempty"`
	Thumbnail *EmbedThumbnail `json:"thumbnail,omitempty"`
	Fields    []EmbedField    `json:"fields,omitempty"`
}

type EmbedThumbnail struct {
	URL string `json:"url"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type messagePayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

// RenderTransaction builds the announcement embed for tx. headshotURL may be
// empty, in which case no thumbnail is set.
func RenderTransaction(tx transaction.Transaction, headshotURL string) (Embed, error) {
	var embed Embed
	switch tx.Type {
	case transaction.TypeAdd:
		embed = Embed{Title: "Player added by " + tx.Owner(), Color: colorAdd}
		embed.addPlayers(tx.Players[:min(1, len(tx.Players))], true)
	case transaction.TypeDrop:
		embed = Embed{Title: "Player dropped by " + tx.Owner(), Color: colorDrop}
		embed.addPlayers(tx.Players[:min(1, len(tx.Players))], true)
	case transaction.TypeAddDrop:
		embed = Embed{Title: "Player added/dropped by " + tx.Owner(), Color: colorAddDrop}
		if len(tx.Players) > 0 {
			embed.section("Player Added")
			embed.addPlayers(tx.Players[:1], true)
		}
		if len(tx.Players) > 1 {
			embed.section("Player Dropped")
			embed.addPlayers(tx.Players[1:2], true)
		}
	case transaction.TypeTrade:
		embed = Embed{Title: fmt.Sprintf("Trade between %s and %s", tx.TraderTeam, tx.TradeeTeam), Color: colorTrade}
		for _, team := range []string{tx.TraderTeam, tx.TradeeTeam} {
			embed.section("Players to " + team)
			embed.addPlayers(tx.PlayersTo(team), false)
		}
		return embed, nil
	default:
		return Embed{}, fmt.Errorf("no embed for transaction type %s", tx.Type)
	}

	if headshotURL != "" {
		embed.Thumbnail = &EmbedThumbnail{URL: headshotURL}
	}
	return embed, nil
}

func (e *Embed) section(name string) {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: sectionRule})
}

func (e *Embed) addPlayers(players []transaction.PlayerMovement, inline bool) {
	for _, p := range players {
		e.Fields = append(e.Fields,
			EmbedField{Name: "Player", Value: orDash(p.Name), Inline: inline},
			EmbedField{Name: "Team", Value: orDash(p.TeamAbbr), Inline: inline},
			EmbedField{Name: "Position", Value: orDash(p.Position), Inline: inline},
		)
	}
}

// Discord rejects embed fields with empty values.
func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
